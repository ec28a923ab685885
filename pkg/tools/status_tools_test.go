package tools

import "testing"

func TestMaskImage(t *testing.T) {
	tests := []struct {
		image string
		want  string
	}{
		{
			image: "123456789012.dkr.ecr.us-west-2.amazonaws.com/web:latest",
			want:  "******.dkr.ecr.us-west-2.amazonaws.com/web:latest",
		},
		{
			image: "nginx:1.25",
			want:  "******.25",
		},
		{
			image: "nginx",
			want:  "nginx",
		},
		{
			image: ".hidden",
			want:  ".hidden",
		},
	}

	for _, tt := range tests {
		if got := maskImage(tt.image); got != tt.want {
			t.Errorf("maskImage(%q) = %q, want %q", tt.image, got, tt.want)
		}
	}
}

func TestArnSuffix(t *testing.T) {
	tests := []struct {
		arn  string
		want string
	}{
		{"arn:aws:ecs:us-west-2:123:task/prod-cluster/abc123", "abc123"},
		{"arn:aws:ecs:us-west-2:123:task-definition/web:42", "web:42"},
		{"plain-name", "plain-name"},
	}

	for _, tt := range tests {
		if got := arnSuffix(tt.arn); got != tt.want {
			t.Errorf("arnSuffix(%q) = %q, want %q", tt.arn, got, tt.want)
		}
	}
}

func TestPeriodMinutesArg(t *testing.T) {
	tests := []struct {
		name      string
		arguments map[string]interface{}
		want      int
	}{
		{"missing defaults to 15", map[string]interface{}{}, 15},
		{"JSON number", map[string]interface{}{"period_minutes": float64(30)}, 30},
		{"integer", map[string]interface{}{"period_minutes": 5}, 5},
		{"zero defaults to 15", map[string]interface{}{"period_minutes": float64(0)}, 15},
		{"negative defaults to 15", map[string]interface{}{"period_minutes": float64(-10)}, 15},
		{"wrong type defaults to 15", map[string]interface{}{"period_minutes": "20"}, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := periodMinutesArg(tt.arguments); got != tt.want {
				t.Errorf("periodMinutesArg = %d, want %d", got, tt.want)
			}
		})
	}
}
