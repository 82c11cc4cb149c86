package widgets

import "testing"

func TestEmbedConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		embed   EmbedConfig
		wantErr bool
	}{
		{"all absent", EmbedConfig{}, true},
		{"widget id only", EmbedConfig{WidgetID: "w1"}, false},
		{"site token only", EmbedConfig{SiteToken: "tok"}, false},
		{"website id only", EmbedConfig{WebsiteID: "s1"}, false},
		{"combined", EmbedConfig{WidgetID: "w1", SiteToken: "tok", WebsiteID: "s1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.embed.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
