package telegram

import (
	"context"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/messenger"
)

// ErrSignUpRequired is returned when the phone has no account yet. The
// tool only signs in to existing accounts.
var ErrSignUpRequired = eris.New("telegram: phone number is not registered")

// authenticator feeds an auth flow from the messenger callbacks.
type authenticator struct {
	phone    string
	code     messenger.CodeFunc
	password messenger.PasswordFunc
}

var _ auth.UserAuthenticator = authenticator{}

func (a authenticator) Phone(_ context.Context) (string, error) {
	return a.phone, nil
}

func (a authenticator) Password(ctx context.Context) (string, error) {
	if a.password == nil {
		return "", auth.ErrPasswordNotProvided
	}
	pw, err := a.password(ctx)
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", auth.ErrPasswordNotProvided
	}
	return pw, nil
}

func (a authenticator) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	if a.code == nil {
		return "", eris.New("telegram: login code required but no code source configured")
	}
	code, err := a.code(ctx, a.phone)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(code), nil
}

func (a authenticator) AcceptTermsOfService(_ context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

func (a authenticator) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, ErrSignUpRequired
}
