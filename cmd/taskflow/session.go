package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nhle/taskflow/internal/client"
	"github.com/nhle/taskflow/internal/credential"
	"github.com/nhle/taskflow/internal/model"
)

// serverURL resolves the server address from the --server flag or config.
func serverURL() (string, error) {
	if flagServer != "" {
		return flagServer, nil
	}
	cfg, err := model.LoadConfig(flagConfig)
	if err != nil {
		return "", err
	}
	return cfg.Client.ServerURL, nil
}

// newClient builds an API client with no session attached, for login and
// registration.
func newClient() (*client.Client, error) {
	url, err := serverURL()
	if err != nil {
		return nil, err
	}
	return client.NewClient(url), nil
}

// newSession builds an API client carrying the stored bearer token and
// returns the cached user it belongs to.
func newSession() (*client.Client, model.User, error) {
	c, err := newClient()
	if err != nil {
		return nil, model.User{}, err
	}

	token, err := credential.Get(credential.TokenKey)
	if err != nil {
		return nil, model.User{}, fmt.Errorf("not logged in (run `taskflow login`)")
	}
	c.SetToken(token)

	var user model.User
	raw, err := credential.Get(credential.UserKey)
	if err == nil {
		_ = json.Unmarshal([]byte(raw), &user)
	}

	return c, user, nil
}

// saveSession stores the token and user in the system keyring.
func saveSession(token string, user model.User) error {
	if err := credential.Set(credential.TokenKey, token); err != nil {
		return err
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	return credential.Set(credential.UserKey, string(raw))
}

// clearSession removes any stored token and user.
func clearSession() {
	_ = credential.Delete(credential.TokenKey)
	_ = credential.Delete(credential.UserKey)
}

// sessionErr tears the session down when the server rejected it, so the
// next command starts from a clean login.
func sessionErr(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		clearSession()
		return fmt.Errorf("session expired, log in again with `taskflow login`")
	}
	return err
}
