package session

import (
	"encoding/json"
	"fmt"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

const (
	identityKey     = "identity"
	authBlobKey     = "auth"
	redirectPathKey = "redirect_path"
)

// State is the per-browser identity container. Implementations must route
// every identity change through SetIdentity and ClearIdentity.
type State interface {
	Identity() (*models.Identity, bool)
	AuthBlob() (*models.AuthBlob, bool)
	SetIdentity(identity models.Identity, blob models.AuthBlob) error
	UpdateAuthBlob(blob models.AuthBlob) error
	ClearIdentity() error
	SaveRedirectPath(path string) error
	ConsumeRedirectPath() (string, error)
}

var _ State = (*Store)(nil)

// Store keeps identity state in the signed cookie session.
type Store struct {
	sess sessions.Session
}

func NewStore(sess sessions.Session) *Store {
	return &Store{sess: sess}
}

// FromContext returns the Store bound to the request's cookie session.
func FromContext(c *gin.Context) *Store {
	return NewStore(sessions.Default(c))
}

func (s *Store) Identity() (*models.Identity, bool) {
	var id models.Identity
	if !s.load(identityKey, &id) || id.UserID == "" {
		return nil, false
	}
	return &id, true
}

func (s *Store) AuthBlob() (*models.AuthBlob, bool) {
	var blob models.AuthBlob
	if !s.load(authBlobKey, &blob) || blob.AccessToken == "" {
		return nil, false
	}
	return &blob, true
}

func (s *Store) SetIdentity(identity models.Identity, blob models.AuthBlob) error {
	if err := s.store(identityKey, identity); err != nil {
		return err
	}
	if err := s.store(authBlobKey, blob); err != nil {
		return err
	}
	return s.sess.Save()
}

func (s *Store) UpdateAuthBlob(blob models.AuthBlob) error {
	if err := s.store(authBlobKey, blob); err != nil {
		return err
	}
	return s.sess.Save()
}

// ClearIdentity drops the identity together with the auth blob and any
// pending redirect path.
func (s *Store) ClearIdentity() error {
	s.sess.Delete(identityKey)
	s.sess.Delete(authBlobKey)
	s.sess.Delete(redirectPathKey)
	return s.sess.Save()
}

func (s *Store) SaveRedirectPath(path string) error {
	s.sess.Set(redirectPathKey, path)
	return s.sess.Save()
}

// ConsumeRedirectPath returns the pending redirect path once and clears it.
func (s *Store) ConsumeRedirectPath() (string, error) {
	path, _ := s.sess.Get(redirectPathKey).(string)
	if path == "" {
		return "", nil
	}
	s.sess.Delete(redirectPathKey)
	return path, s.sess.Save()
}

func (s *Store) load(key string, dst any) bool {
	raw, ok := s.sess.Get(key).(string)
	if !ok || raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

func (s *Store) store(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", key, err)
	}
	s.sess.Set(key, string(raw))
	return nil
}
