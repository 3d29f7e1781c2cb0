// Package secrets はベアラートークンの永続化を提供する。
//
// モバイル版のKeychain/SecureStoreに相当するシークレットストアを、
// ageで暗号化した単一ファイルとして実装する。暗号化鍵（age identity）は
// 初回利用時に生成してストアディレクトリ内に0600で保存する。
// 格納するシークレットはキー"jwt_token"の1件のみ。
package secrets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

const (
	// tokenFile はトークンを格納する暗号化ファイル名。
	// キー名"jwt_token"はモバイル版のシークレットストアのキーと揃えている。
	tokenFile = "jwt_token.age"
	// identityFile はage identityを格納するファイル名。
	identityFile = "identity.key"
)

// Store はファイルベースのシークレットストア。
type Store struct {
	dir string
}

// NewStore は指定ディレクトリを使用するStoreを生成する。
// ディレクトリは最初の書き込み時に0700で作成される。
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// SaveToken はトークンを暗号化して保存する。既存のトークンは上書きされる。
func (s *Store) SaveToken(token string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}

	identity, err := s.loadOrCreateIdentity()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, identity.Recipient())
	if err != nil {
		return fmt.Errorf("failed to create encryptor: %w", err)
	}
	if _, err := io.WriteString(w, token); err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize encryption: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// Token は保存済みトークンを復号して返す。
// 未保存・復号失敗・読み取り失敗はすべて「トークンなし」として扱い、エラーにしない。
func (s *Store) Token() (string, bool) {
	ciphertext, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		return "", false
	}

	identity, err := s.loadIdentity()
	if err != nil {
		return "", false
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return "", false
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return "", false
	}

	token := string(plaintext)
	if token == "" {
		return "", false
	}
	return token, true
}

// DeleteToken はトークンファイルを削除する。
// ファイルが存在しない場合もエラーにしない（冪等）。
func (s *Store) DeleteToken() error {
	err := os.Remove(filepath.Join(s.dir, tokenFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// loadIdentity は保存済みのage identityを読み込む。
func (s *Store) loadIdentity() (*age.X25519Identity, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, identityFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read identity file: %w", err)
	}

	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity: %w", err)
	}
	return identity, nil
}

// loadOrCreateIdentity は保存済みidentityを読み込み、無ければ生成して保存する。
func (s *Store) loadOrCreateIdentity() (*age.X25519Identity, error) {
	if identity, err := s.loadIdentity(); err == nil {
		return identity, nil
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("failed to generate identity: %w", err)
	}

	path := filepath.Join(s.dir, identityFile)
	if err := os.WriteFile(path, []byte(identity.String()+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write identity file: %w", err)
	}

	return identity, nil
}
