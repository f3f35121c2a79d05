package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/goAccounts/token"
)

var errBadToken = errors.New("bad token")

func workingActivationDeps(created *[]token.Registrant) ActivationDeps {
	return ActivationDeps{
		Verify: func(string) (*token.ActivationClaims, error) {
			return &token.ActivationClaims{
				User: token.Registrant{
					Name:         "Alice",
					Email:        "alice@example.com",
					PasswordHash: "$argon2id$...",
				},
				ActivationCode: "4821",
			}, nil
		},
		AccountExists: func(context.Context, string) (bool, error) {
			return false, nil
		},
		Create: func(_ context.Context, reg token.Registrant) error {
			*created = append(*created, reg)
			return nil
		},
	}
}

func TestRunActivationSuccess(t *testing.T) {
	var created []token.Registrant
	result := RunActivation(context.Background(), "tok", "4821", workingActivationDeps(&created))

	if result.Failure != ActivationFailureNone {
		t.Fatalf("failure %v, err %v", result.Failure, result.Err)
	}
	if len(created) != 1 || created[0].Email != "alice@example.com" {
		t.Fatalf("created %+v", created)
	}
	if result.Registrant.Name != "Alice" {
		t.Fatalf("registrant %+v", result.Registrant)
	}
}

func TestRunActivationGates(t *testing.T) {
	var created []token.Registrant

	tests := []struct {
		name   string
		code   string
		mutate func(*ActivationDeps)
		want   ActivationFailureKind
	}{
		{
			"bad token", "4821",
			func(d *ActivationDeps) {
				d.Verify = func(string) (*token.ActivationClaims, error) { return nil, errBadToken }
			},
			ActivationFailureToken,
		},
		{
			"code mismatch", "0000",
			func(*ActivationDeps) {},
			ActivationFailureCodeMismatch,
		},
		{
			"code with extra digits", "48210",
			func(*ActivationDeps) {},
			ActivationFailureCodeMismatch,
		},
		{
			"duplicate email", "4821",
			func(d *ActivationDeps) {
				d.AccountExists = func(context.Context, string) (bool, error) { return true, nil }
			},
			ActivationFailureDuplicate,
		},
		{
			"lookup failure", "4821",
			func(d *ActivationDeps) {
				d.AccountExists = func(context.Context, string) (bool, error) { return false, errBadToken }
			},
			ActivationFailureLookup,
		},
		{
			"create failure", "4821",
			func(d *ActivationDeps) {
				d.Create = func(context.Context, token.Registrant) error { return errBadToken }
			},
			ActivationFailureCreate,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deps := workingActivationDeps(&created)
			tc.mutate(&deps)

			result := RunActivation(context.Background(), "tok", tc.code, deps)
			if result.Failure != tc.want {
				t.Fatalf("failure %v, want %v", result.Failure, tc.want)
			}
		})
	}

	// None of the gate failures may have committed an account.
	if len(created) != 0 {
		t.Fatalf("gate failures created %d accounts", len(created))
	}
}

func TestRunActivationMismatchDoesNotConsume(t *testing.T) {
	var created []token.Registrant
	deps := workingActivationDeps(&created)

	if res := RunActivation(context.Background(), "tok", "1111", deps); res.Failure != ActivationFailureCodeMismatch {
		t.Fatalf("first attempt: %v", res.Failure)
	}
	if res := RunActivation(context.Background(), "tok", "4821", deps); res.Failure != ActivationFailureNone {
		t.Fatalf("second attempt: %v", res.Failure)
	}
	if len(created) != 1 {
		t.Fatalf("created %d accounts, want 1", len(created))
	}
}
