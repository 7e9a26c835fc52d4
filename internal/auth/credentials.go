// Package auth builds git transport credentials for repository providers.
package auth

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/konverso-ai/kbot-installer/internal/factory"
)

// Static errors for err113 compliance.
var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrPrivateKeyRequired = errors.New("private key path is required")
)

// DefaultSSHUser is the user for SSH remotes when none is given.
const DefaultSSHUser = "git"

// Registry holds the credential builders. Providers resolve methods by
// name, for example "user_pass" or "key_pair".
//
//nolint:gochecknoglobals // Registration point shared by provider configs
var Registry = factory.NewRegistry[transport.AuthMethod]()

//nolint:gochecknoinits // Builders register themselves like database/sql drivers
func init() {
	Registry.Register("user_pass", "auth", func(args factory.Args) (transport.AuthMethod, error) {
		username, err := args.String("username")
		if err != nil {
			return nil, err
		}

		password, err := args.StringOr("password", "")
		if err != nil {
			return nil, err
		}

		return UserPass(username, password)
	})

	Registry.Register("key_pair", "auth", func(args factory.Args) (transport.AuthMethod, error) {
		user, err := args.StringOr("user", DefaultSSHUser)
		if err != nil {
			return nil, err
		}

		keyPath, err := args.String("private_key_path")
		if err != nil {
			return nil, err
		}

		passphrase, err := args.StringOr("passphrase", "")
		if err != nil {
			return nil, err
		}

		return KeyPair(user, keyPath, passphrase)
	})
}

// New builds a credential method by registry name.
func New(name string, args factory.Args) (transport.AuthMethod, error) {
	return Registry.New(name, "auth", args)
}

// UserPass builds HTTP basic credentials for git remotes. Tokens go in the
// password slot with any non-empty username.
func UserPass(username, password string) (transport.AuthMethod, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}

	return &githttp.BasicAuth{Username: username, Password: password}, nil
}

// KeyPair builds SSH credentials from a private key file.
func KeyPair(user, privateKeyPath, passphrase string) (transport.AuthMethod, error) {
	if privateKeyPath == "" {
		return nil, ErrPrivateKeyRequired
	}

	if user == "" {
		user = DefaultSSHUser
	}

	keys, err := gitssh.NewPublicKeysFromFile(user, privateKeyPath, passphrase)
	if err != nil {
		return nil, fmt.Errorf("loading private key %s: %w", privateKeyPath, err)
	}

	return keys, nil
}
