package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sanjaibalajee/weebsworldxplorers/internal/auth"
)

type fakeStore struct {
	users map[string]*User
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*User, error) {
	return f.users[id], nil
}

func (f *fakeStore) List(_ context.Context) ([]*User, error) {
	var out []*User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func newTestService() (*Service, *auth.JWTManager) {
	store := &fakeStore{users: map[string]*User{
		"u1": {ID: "u1", Name: "Alice", PIN: "1234", Role: RoleMember},
		"u2": {ID: "u2", Name: "Sanjai", PIN: "9999", Role: RoleAdmin},
	}}
	jwt := auth.NewJWTManager("test-secret", time.Hour)
	return NewService(store, jwt), jwt
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		pin     string
		wantErr error
	}{
		{name: "correct PIN", userID: "u1", pin: "1234"},
		{name: "wrong PIN", userID: "u1", pin: "0000", wantErr: ErrIncorrectPIN},
		{name: "unknown user", userID: "ghost", pin: "1234", wantErr: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, jwt := newTestService()
			user, token, err := svc.Login(context.Background(), tt.userID, tt.pin)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() unexpected error: %v", err)
			}
			if user.ID != tt.userID {
				t.Errorf("user.ID = %s, want %s", user.ID, tt.userID)
			}

			claims, err := jwt.Validate(token)
			if err != nil {
				t.Fatalf("issued token failed validation: %v", err)
			}
			if claims.UserID != tt.userID {
				t.Errorf("claims.UserID = %s, want %s", claims.UserID, tt.userID)
			}
		})
	}
}

func TestLoginCarriesRole(t *testing.T) {
	svc, jwt := newTestService()

	_, token, err := svc.Login(context.Background(), "u2", "9999")
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}

	claims, err := jwt.Validate(token)
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("claims.Role = %s, want %s", claims.Role, RoleAdmin)
	}
}

func TestGetByID(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.GetByID(context.Background(), "u1")
	if err != nil || u.Name != "Alice" {
		t.Errorf("GetByID() = %+v, %v; want Alice", u, err)
	}

	if _, err := svc.GetByID(context.Background(), "nope"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrUserNotFound", err)
	}
}
