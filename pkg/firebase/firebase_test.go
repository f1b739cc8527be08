package firebase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitFirebaseRequiresCredentials(t *testing.T) {
	_, err := InitFirebase(context.Background(), "")
	assert.ErrorContains(t, err, "not provided")

	_, err = InitFirebase(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "not found")
}

func TestIdentityFromClaims(t *testing.T) {
	id, err := identityFromClaims("fb-1", map[string]interface{}{"email": "ann@example.com", "name": "Ann"})
	assert.NoError(t, err)
	assert.Equal(t, &Identity{UID: "fb-1", Email: "ann@example.com", Name: "Ann"}, id)

	_, err = identityFromClaims("fb-2", map[string]interface{}{"name": "No Mail"})
	assert.Error(t, err)
}
