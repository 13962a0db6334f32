package validate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type sample struct {
	Source string  `ini:"source_url" validate:"required,http_url"`
	Digest string  `json:"digest" validate:"omitempty,len=64,hexadecimal"`
	Ratio  float64 `validate:"gte=0,lte=1"`
}

func TestCheck(t *testing.T) {
	testCases := []struct {
		name      string
		val       sample
		expFields []string
	}{
		{
			name: "valid",
			val: sample{
				Source: "https://example.com/model.pt",
				Ratio:  0.5,
			},
		},
		{
			name: "missing and malformed",
			val: sample{
				Digest: "not-hex",
				Ratio:  2,
			},
			expFields: []string{"source_url", "digest", "Ratio"},
		},
		{
			name: "non http scheme",
			val: sample{
				Source: "ftp://example.com/model.pt",
			},
			expFields: []string{"source_url"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(tc.val)
			if tc.expFields == nil {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}

			var fe FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got: %T %v", err, err)
			}

			if diff := cmp.Diff(tc.expFields, fe.Fields()); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{
		{Field: "a", Err: "bad"},
		{Field: "b", Err: "worse"},
	}

	if got, want := fe.Error(), "a: bad; b: worse"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
