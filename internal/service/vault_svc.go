package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"shopify_sync_v1/pkg/apperr"
)

// ==================== 凭证加密参数 ====================

const (
	vaultSaltLen    = 16
	vaultIVLen      = 12
	vaultTagLen     = 16
	vaultKeyLen     = 32
	vaultIterations = 100_000
)

// VaultService 访问令牌静态加密
// 每次加密生成新的随机 salt 与 IV，密钥由进程级口令经 PBKDF2 派生
// 存储格式：b64(salt):b64(iv):b64(tag):b64(ct)
type VaultService struct {
	secretEnv string

	mu     sync.Mutex
	secret []byte
}

// NewVaultService 创建加密服务
// secretEnv: 口令所在环境变量名。口令首次使用时才读取，
// 缺失时在调用点报错，而不是启动即崩掉无关链路
func NewVaultService(secretEnv string) *VaultService {
	return &VaultService{secretEnv: secretEnv}
}

func (s *VaultService) loadSecret() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.secret != nil {
		return s.secret, nil
	}
	v := os.Getenv(s.secretEnv)
	if v == "" {
		return nil, &apperr.ValidationError{Message: "加密口令未配置: " + s.secretEnv}
	}
	s.secret = []byte(v)
	return s.secret, nil
}

// Encrypt 加密明文令牌
func (s *VaultService) Encrypt(plaintext string) (string, error) {
	secret, err := s.loadSecret()
	if err != nil {
		return "", err
	}

	salt := make([]byte, vaultSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	iv := make([]byte, vaultIVLen)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	gcm, err := newGCM(secret, salt)
	if err != nil {
		return "", err
	}

	// Seal 输出为 密文||认证标签，按存储格式拆开
	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	ct := sealed[:len(sealed)-vaultTagLen]
	tag := sealed[len(sealed)-vaultTagLen:]

	parts := []string{
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(iv),
		base64.StdEncoding.EncodeToString(tag),
		base64.StdEncoding.EncodeToString(ct),
	}
	return strings.Join(parts, ":"), nil
}

// Decrypt 解密令牌
// 格式损坏或认证标签校验失败（篡改/口令不匹配）时返回 DecryptionError，
// 绝不静默返回损坏数据
func (s *VaultService) Decrypt(ciphertext string) (string, error) {
	secret, err := s.loadSecret()
	if err != nil {
		return "", err
	}

	salt, iv, tag, ct, err := splitCiphertext(ciphertext)
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(secret, salt)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, iv, append(ct, tag...), nil)
	if err != nil {
		return "", &apperr.DecryptionError{Message: "认证标签校验失败"}
	}
	return string(plaintext), nil
}

// IsEncrypted 结构启发式判断是否为已加密值
// 更新连接时用于区分库中已加密值与新提交的明文
func (s *VaultService) IsEncrypted(value string) bool {
	_, _, _, _, err := splitCiphertext(value)
	return err == nil
}

func newGCM(secret, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(secret, salt, vaultIterations, vaultKeyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func splitCiphertext(value string) (salt, iv, tag, ct []byte, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 4 {
		return nil, nil, nil, nil, &apperr.DecryptionError{Message: "格式错误"}
	}

	decoded := make([][]byte, 4)
	for i, p := range parts {
		b, decErr := base64.StdEncoding.DecodeString(p)
		if decErr != nil {
			return nil, nil, nil, nil, &apperr.DecryptionError{Message: "base64 解码失败"}
		}
		decoded[i] = b
	}

	salt, iv, tag, ct = decoded[0], decoded[1], decoded[2], decoded[3]
	if len(salt) != vaultSaltLen || len(iv) != vaultIVLen || len(tag) != vaultTagLen {
		return nil, nil, nil, nil, &apperr.DecryptionError{Message: "字段长度错误"}
	}
	return salt, iv, tag, ct, nil
}
