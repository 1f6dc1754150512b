package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"life-goals/internal/api"
	"life-goals/internal/model"
	"life-goals/internal/repository"
	"life-goals/internal/store"
)

var ErrNotLinked = errors.New("backend account is not linked")

// AccountService links chats to backend accounts and hands out
// authenticated clients.
type AccountService struct {
	users *repository.UserRepository
	api   *api.Client
	store *store.Store
}

func NewAccountService(users *repository.UserRepository, client *api.Client, st *store.Store) *AccountService {
	return &AccountService{users: users, api: client, store: st}
}

// Login obtains tokens for the backend account and loads the first snapshot.
func (s *AccountService) Login(ctx context.Context, user *model.User, username, password string) error {
	tokens, err := s.api.ObtainToken(ctx, username, password)
	if err != nil {
		return fmt.Errorf("obtain token: %w", err)
	}
	if err := s.users.SaveTokens(ctx, user, username, tokens.Access, tokens.Refresh); err != nil {
		return err
	}
	s.store.Forget(user.ID)
	if _, err := s.Refresh(ctx, user); err != nil {
		log.Printf("[warn] initial refresh for user %d: %v", user.ID, err)
	}
	return nil
}

// Logout forgets the tokens and the cached snapshot.
func (s *AccountService) Logout(ctx context.Context, user *model.User) error {
	if err := s.users.ClearTokens(ctx, user); err != nil {
		return err
	}
	s.store.Forget(user.ID)
	return nil
}

// Call runs fn with the user's client. When the access token has expired
// it is renewed with the refresh token and fn runs once more.
func (s *AccountService) Call(ctx context.Context, user *model.User, fn func(*api.Client) error) error {
	if !user.Linked() {
		return ErrNotLinked
	}
	err := fn(s.api.WithToken(user.AccessToken))
	if !errors.Is(err, api.ErrUnauthorized) || user.RefreshToken == "" {
		return err
	}

	access, rerr := s.api.RefreshToken(ctx, user.RefreshToken)
	if rerr != nil {
		log.Printf("[warn] renew token for user %d: %v", user.ID, rerr)
		return err
	}
	if err := s.users.UpdateAccessToken(ctx, user, access); err != nil {
		return err
	}
	return fn(s.api.WithToken(access))
}

// Refresh reloads the user's goals and habits into the store.
func (s *AccountService) Refresh(ctx context.Context, user *model.User) (store.Snapshot, error) {
	var snap store.Snapshot
	err := s.Call(ctx, user, func(c *api.Client) error {
		var err error
		snap, err = s.store.Refresh(ctx, user.ID, c)
		return err
	})
	if errors.Is(err, store.ErrStale) {
		if current, ok := s.store.Get(user.ID); ok {
			return current, nil
		}
	}
	return snap, err
}

// refreshAfterWrite reloads after a successful mutation. The store logs
// failures and keeps the previous snapshot.
func (s *AccountService) refreshAfterWrite(ctx context.Context, user *model.User) {
	_, _ = s.Refresh(ctx, user)
}

// Snapshot returns the cached snapshot, loading it on first use.
func (s *AccountService) Snapshot(ctx context.Context, user *model.User) (store.Snapshot, error) {
	if !user.Linked() {
		return store.Snapshot{}, ErrNotLinked
	}
	if snap, ok := s.store.Get(user.ID); ok {
		return snap, nil
	}
	return s.Refresh(ctx, user)
}

// Profile loads the backend profile of the linked account.
func (s *AccountService) Profile(ctx context.Context, user *model.User) (*model.Profile, error) {
	var p *model.Profile
	err := s.Call(ctx, user, func(c *api.Client) error {
		var err error
		p, err = c.Profile(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// SetBio replaces the profile bio. An empty bio clears it.
func (s *AccountService) SetBio(ctx context.Context, user *model.User, bio string) (*model.Profile, error) {
	current, err := s.Profile(ctx, user)
	if err != nil {
		return nil, err
	}
	var p *model.Profile
	err = s.Call(ctx, user, func(c *api.Client) error {
		var err error
		p, err = c.UpdateBio(ctx, current.ID, strings.TrimSpace(bio))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update bio: %w", err)
	}
	return p, nil
}

// RefreshAll reloads every linked user. Failures are logged and skipped.
func (s *AccountService) RefreshAll(ctx context.Context) error {
	users, err := s.users.ListLinked(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.Refresh(ctx, &users[i]); err != nil {
			log.Printf("[warn] refresh user %d: %v", users[i].ID, err)
		}
	}
	return nil
}

// Linked lists users with backend credentials.
func (s *AccountService) Linked(ctx context.Context) ([]model.User, error) {
	return s.users.ListLinked(ctx)
}
