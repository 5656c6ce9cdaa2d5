package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify_sync_v1/pkg/apperr"
)

const testSecretEnv = "TEST_CREDENTIAL_SECRET"

func newTestVault(t *testing.T) *VaultService {
	t.Helper()
	t.Setenv(testSecretEnv, "test-secret-passphrase")
	return NewVaultService(testSecretEnv)
}

func TestVault_RoundTrip(t *testing.T) {
	vault := newTestVault(t)

	encrypted, err := vault.Encrypt("shpat_abc123")
	require.NoError(t, err)

	// 存储格式：salt:iv:tag:ct 四段
	assert.Len(t, strings.Split(encrypted, ":"), 4)
	assert.NotContains(t, encrypted, "shpat_abc123")

	decrypted, err := vault.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "shpat_abc123", decrypted)
}

func TestVault_EncryptNotDeterministic(t *testing.T) {
	vault := newTestVault(t)

	a, err := vault.Encrypt("same-token")
	require.NoError(t, err)
	b, err := vault.Encrypt("same-token")
	require.NoError(t, err)

	// 每次加密随机 salt/IV，密文必然不同
	assert.NotEqual(t, a, b)
}

func TestVault_TamperedCiphertext(t *testing.T) {
	vault := newTestVault(t)

	encrypted, err := vault.Encrypt("shpat_abc123")
	require.NoError(t, err)

	// 翻转认证标签段的第一个字符
	parts := strings.Split(encrypted, ":")
	tag := []byte(parts[2])
	if tag[0] == 'A' {
		tag[0] = 'B'
	} else {
		tag[0] = 'A'
	}
	parts[2] = string(tag)

	_, err = vault.Decrypt(strings.Join(parts, ":"))
	var decErr *apperr.DecryptionError
	assert.ErrorAs(t, err, &decErr)
}

func TestVault_MalformedCiphertext(t *testing.T) {
	vault := newTestVault(t)

	for _, input := range []string{"", "abc", "a:b:c", "not:base:64:!!!"} {
		_, err := vault.Decrypt(input)
		var decErr *apperr.DecryptionError
		assert.ErrorAs(t, err, &decErr, "输入: %q", input)
	}
}

func TestVault_IsEncrypted(t *testing.T) {
	vault := newTestVault(t)

	encrypted, err := vault.Encrypt("shpat_abc123")
	require.NoError(t, err)

	assert.True(t, vault.IsEncrypted(encrypted))
	assert.False(t, vault.IsEncrypted("shpat_abc123"))
	assert.False(t, vault.IsEncrypted("a:b:c:d"))
}

func TestVault_MissingSecret(t *testing.T) {
	vault := NewVaultService("VAULT_ENV_THAT_DOES_NOT_EXIST")

	_, err := vault.Encrypt("token")
	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestVault_WrongSecretFailsAuth(t *testing.T) {
	t.Setenv(testSecretEnv, "secret-one")
	vaultA := NewVaultService(testSecretEnv)
	encrypted, err := vaultA.Encrypt("shpat_abc123")
	require.NoError(t, err)

	t.Setenv(testSecretEnv, "secret-two")
	vaultB := NewVaultService(testSecretEnv)
	_, err = vaultB.Decrypt(encrypted)

	var decErr *apperr.DecryptionError
	assert.ErrorAs(t, err, &decErr)
}
