package domain

import "testing"

func TestParsePoints(t *testing.T) {
	tests := []struct {
		input   string
		want    Points
		wantErr bool
	}{
		{"", nil, false},
		{"1:2", Points{{1, 2}}, false},
		{"1:2;3.5:-4", Points{{1, 2}, {3.5, -4}}, false},
		{" 1 : 2 ", Points{{1, 2}}, false},
		{"1;2", nil, true},
		{"a:2", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePoints(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePoints(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParsePoints(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("point %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPointsString(t *testing.T) {
	p := Points{{0, 0}, {12.25, 7}}
	if got := p.String(); got != "0:0;12.25:7" {
		t.Errorf("expected 0:0;12.25:7, got %s", got)
	}
}
