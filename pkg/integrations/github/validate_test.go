package github

import (
	"testing"

	"github.com/philips-software/bom-base-sub000/pkg/errors"
)

func TestValidateRepoRef(t *testing.T) {
	tests := []struct {
		owner, repo string
		wantErr     bool
	}{
		{"spf13", "cobra", false},
		{"a", "b.c_d-e", false},
		{"", "cobra", true},
		{"-x", "repo", true},
		{"owner", "", true},
		{"owner", "re po", true},
		{"owner", "..", true},
	}
	for _, tt := range tests {
		t.Run(tt.owner+"/"+tt.repo, func(t *testing.T) {
			err := ValidateRepoRef(tt.owner, tt.repo)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRepoRef(%q, %q) error = %v, wantErr %v", tt.owner, tt.repo, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
		})
	}
}
