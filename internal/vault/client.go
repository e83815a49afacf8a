package vault

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
)

// ciphertextPrefix marks values produced by the transit engine
const ciphertextPrefix = "vault:v"

// Config holds Vault configuration
type Config struct {
	Address      string
	Token        string
	TransitMount string
}

// Client talks to one transit mount
type Client struct {
	api   *api.Client
	mount string
}

// NewClient connects to Vault and mounts the transit engine when it is missing
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	apiCfg := api.DefaultConfig()
	apiCfg.Address = cfg.Address

	ac, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	ac.SetToken(cfg.Token)

	c := &Client{api: ac, mount: cfg.TransitMount}
	if err := c.ensureMount(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize transit engine: %w", err)
	}
	return c, nil
}

func (c *Client) ensureMount(ctx context.Context) error {
	mounts, err := c.api.Sys().ListMountsWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to list mounts: %w", err)
	}
	if _, ok := mounts[c.mount+"/"]; ok {
		return nil
	}

	return c.api.Sys().MountWithContext(ctx, c.mount, &api.MountInput{
		Type:        "transit",
		Description: "Transit encryption for interview transcripts",
	})
}

// EnsureKey creates a non-exportable aes256-gcm96 key. Vault treats creating
// an existing key as a no-op.
func (c *Client) EnsureKey(ctx context.Context, keyName string) error {
	_, err := c.write(ctx, "keys", keyName, map[string]any{
		"type":       "aes256-gcm96",
		"exportable": false,
	})
	if err != nil {
		return fmt.Errorf("failed to create key %s: %w", keyName, err)
	}
	return nil
}

// Encrypt returns the transit ciphertext of plaintext
func (c *Client) Encrypt(ctx context.Context, keyName string, plaintext []byte) (string, error) {
	data, err := c.write(ctx, "encrypt", keyName, map[string]any{
		"plaintext": base64.StdEncoding.EncodeToString(plaintext),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}
	return stringField(data, "ciphertext")
}

// Decrypt reverses Encrypt
func (c *Client) Decrypt(ctx context.Context, keyName, ciphertext string) ([]byte, error) {
	data, err := c.write(ctx, "decrypt", keyName, map[string]any{"ciphertext": ciphertext})
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	encoded, err := stringField(data, "plaintext")
	if err != nil {
		return nil, err
	}
	plaintext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode plaintext: %w", err)
	}
	return plaintext, nil
}

// write calls <mount>/<op>/<key> and returns the response data
func (c *Client) write(ctx context.Context, op, keyName string, body map[string]any) (map[string]any, error) {
	path := c.mount + "/" + op + "/" + keyName
	secret, err := c.api.Logical().WriteWithContext(ctx, path, body)
	if err != nil {
		return nil, err
	}
	if secret == nil {
		if op == "keys" {
			return nil, nil
		}
		return nil, fmt.Errorf("empty %s response", op)
	}
	return secret.Data, nil
}

func stringField(data map[string]any, name string) (string, error) {
	v, ok := data[name].(string)
	if !ok {
		return "", fmt.Errorf("invalid %s in transit response", name)
	}
	return v, nil
}

// Health reports an error unless Vault is initialized and unsealed
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := c.api.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	switch {
	case !health.Initialized:
		return errors.New("vault is not initialized")
	case health.Sealed:
		return errors.New("vault is sealed")
	}
	return nil
}

// TranscriptSealer encrypts interview transcripts with a single transit key
type TranscriptSealer struct {
	client  *Client
	keyName string
}

// NewTranscriptSealer creates the transit key if needed and returns a sealer bound to it
func NewTranscriptSealer(ctx context.Context, client *Client, keyName string) (*TranscriptSealer, error) {
	if err := client.EnsureKey(ctx, keyName); err != nil {
		return nil, err
	}
	return &TranscriptSealer{client: client, keyName: keyName}, nil
}

// Seal encrypts plaintext into a vault:v<N>: ciphertext
func (s *TranscriptSealer) Seal(ctx context.Context, plaintext []byte) (string, error) {
	return s.client.Encrypt(ctx, s.keyName, plaintext)
}

// Open decrypts a sealed value. Values written before sealing was enabled are
// returned unchanged.
func (s *TranscriptSealer) Open(ctx context.Context, stored string) ([]byte, error) {
	if !IsSealed(stored) {
		return []byte(stored), nil
	}
	return s.client.Decrypt(ctx, s.keyName, stored)
}

// IsSealed reports whether a stored value is a transit ciphertext
func IsSealed(stored string) bool {
	return strings.HasPrefix(stored, ciphertextPrefix)
}
