package selection

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		available int
		want      []int
		wantErr   bool
	}{
		{
			name:      "list and range",
			input:     "1,3-5,8",
			available: 10,
			want:      []int{0, 2, 3, 4, 7},
		},
		{
			name:      "all",
			input:     "all",
			available: 3,
			want:      []int{0, 1, 2},
		},
		{
			name:      "all case insensitive",
			input:     "ALL",
			available: 2,
			want:      []int{0, 1},
		},
		{
			name:      "single index",
			input:     "7",
			available: 10,
			want:      []int{6},
		},
		{
			name:      "duplicates collapse",
			input:     "2,2,1-2",
			available: 5,
			want:      []int{0, 1},
		},
		{
			name:      "whitespace tolerated",
			input:     " 1 , 3 - 4 ",
			available: 5,
			want:      []int{0, 2, 3},
		},
		{
			name:      "out of range",
			input:     "11",
			available: 10,
			wantErr:   true,
		},
		{
			name:      "zero index",
			input:     "0",
			available: 10,
			wantErr:   true,
		},
		{
			name:      "empty input",
			input:     "",
			available: 10,
			wantErr:   true,
		},
		{
			name:      "empty element",
			input:     "1,,3",
			available: 10,
			wantErr:   true,
		},
		{
			name:      "descending range",
			input:     "5-3",
			available: 10,
			wantErr:   true,
		},
		{
			name:      "garbage",
			input:     "1,x",
			available: 10,
			wantErr:   true,
		},
		{
			name:      "range beyond available",
			input:     "8-12",
			available: 10,
			wantErr:   true,
		},
		{
			name:      "nothing available",
			input:     "1",
			available: 0,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, tt.available)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q, %d): expected error, got %v", tt.input, tt.available, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q, %d): %v", tt.input, tt.available, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse(%q, %d) = %v, want %v", tt.input, tt.available, got, tt.want)
			}
		})
	}
}
