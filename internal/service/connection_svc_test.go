package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify_sync_v1/internal/repository"
	"shopify_sync_v1/pkg/apperr"
)

type fakeVerifier struct {
	calls []string
	err   error
}

func (f *fakeVerifier) verify(ctx context.Context, domain, token string) error {
	f.calls = append(f.calls, domain+"|"+token)
	return f.err
}

func newConnectionFixture(t *testing.T) (*ConnectionService, repository.ConnectionRepository, *fakeVerifier) {
	t.Helper()
	db := setupTestDB(t)
	t.Setenv(testSecretEnv, "test-secret-passphrase")

	connRepo := repository.NewConnectionRepository(db)
	verifier := &fakeVerifier{}
	svc := NewConnectionService(connRepo, NewVaultService(testSecretEnv), verifier.verify, testLogger())
	return svc, connRepo, verifier
}

func TestConnectionCreate_EncryptsToken(t *testing.T) {
	svc, connRepo, verifier := newConnectionFixture(t)

	conn, err := svc.Create(context.Background(), 1, "My-Shop.myshopify.com", "shpat_secret")
	require.NoError(t, err)

	// 域名已归一化，令牌在线校验过一次
	assert.Equal(t, "my-shop.myshopify.com", conn.ShopDomain)
	require.Len(t, verifier.calls, 1)
	assert.Equal(t, "my-shop.myshopify.com|shpat_secret", verifier.calls[0])

	// 落库的是密文
	stored, err := connRepo.GetByID(context.Background(), conn.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.AccessToken, "shpat_secret")
	assert.Len(t, strings.Split(stored.AccessToken, ":"), 4)
	assert.True(t, stored.IsActive)
}

func TestConnectionCreate_DuplicateDomainRejected(t *testing.T) {
	svc, _, _ := newConnectionFixture(t)

	_, err := svc.Create(context.Background(), 1, "shop.myshopify.com", "shpat_a")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 2, "shop.myshopify.com", "shpat_b")
	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestConnectionCreate_VerifierFailureAborts(t *testing.T) {
	svc, connRepo, verifier := newConnectionFixture(t)
	verifier.err = &apperr.ConnectionError{Message: "令牌无效"}

	_, err := svc.Create(context.Background(), 1, "shop.myshopify.com", "shpat_bad")
	var connErr *apperr.ConnectionError
	require.ErrorAs(t, err, &connErr)

	// 校验失败时不落库
	list, err := connRepo.ListByTenant(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConnectionUpdateToken_RotatesCiphertext(t *testing.T) {
	svc, connRepo, _ := newConnectionFixture(t)

	conn, err := svc.Create(context.Background(), 1, "shop.myshopify.com", "shpat_old")
	require.NoError(t, err)
	before, err := connRepo.GetByID(context.Background(), conn.ID)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateToken(context.Background(), 1, conn.ID, "shpat_new"))

	after, err := connRepo.GetByID(context.Background(), conn.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.AccessToken, after.AccessToken)
	assert.NotContains(t, after.AccessToken, "shpat_new")
}

func TestConnectionUpdateToken_CrossTenantRejected(t *testing.T) {
	svc, _, _ := newConnectionFixture(t)

	conn, err := svc.Create(context.Background(), 1, "shop.myshopify.com", "shpat_a")
	require.NoError(t, err)

	err = svc.UpdateToken(context.Background(), 999, conn.ID, "shpat_b")
	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestConnectionDeactivate_KeepsMirrorData(t *testing.T) {
	svc, connRepo, _ := newConnectionFixture(t)

	conn, err := svc.Create(context.Background(), 1, "shop.myshopify.com", "shpat_a")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), 1, conn.ID))

	after, err := connRepo.GetByID(context.Background(), conn.ID)
	require.NoError(t, err)
	assert.False(t, after.IsActive)

	// 停用不等于删除，列表里仍可见
	list, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
