package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/konverso-ai/kbot-installer/internal/constants"
)

// NATSName is the registry name of the NATS key-value vault.
const NATSName = "NATS"

// ErrNATSURLRequired is returned when no server URL is configured.
var ErrNATSURLRequired = errors.New("NATS server URL is required")

// NATSConfig configures the NATS key-value vault.
type NATSConfig struct {
	// URL is the NATS server URL, e.g. nats://127.0.0.1:4222.
	URL string

	// Bucket is the key-value bucket name. Defaults to "kbot-vault".
	// The bucket is created on first use.
	Bucket string

	// Name identifies the connection to the server.
	Name string
}

// NATS persists secrets in a JetStream key-value bucket, shared between
// installer runs on different hosts.
type NATS struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATS connects to the server and opens the bucket, creating it when it
// does not exist yet.
func NewNATS(config *NATSConfig) (*NATS, error) {
	if config == nil || config.URL == "" {
		return nil, ErrNATSURLRequired
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultVaultBucket
	}

	connName := config.Name
	if connName == "" {
		connName = constants.DefaultUserAgent
	}

	conn, err := nats.Connect(config.URL, nats.Name(connName))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", config.URL, err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: bucket})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening bucket %s: %w", bucket, err)
	}

	return &NATS{conn: conn, kv: kv}, nil
}

// Name implements Vault.
func (n *NATS) Name() string {
	return NATSName
}

// Get implements Vault.
func (n *NATS) Get(_ context.Context, key string) (string, error) {
	entry, err := n.kv.Get(key)
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return "", &Error{Vault: NATSName, Op: "get", Key: key, Err: ErrKeyNotFound}
		}

		return "", &Error{Vault: NATSName, Op: "get", Key: key, Err: err}
	}

	return string(entry.Value()), nil
}

// Set implements Vault.
func (n *NATS) Set(_ context.Context, key, value string) error {
	_, err := n.kv.Put(key, []byte(value))
	if err != nil {
		return &Error{Vault: NATSName, Op: "set", Key: key, Err: err}
	}

	return nil
}

// Delete implements Vault. Deleting an absent key is not an error.
func (n *NATS) Delete(_ context.Context, key string) error {
	err := n.kv.Delete(key)
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return &Error{Vault: NATSName, Op: "delete", Key: key, Err: err}
	}

	return nil
}

// Close releases the server connection.
func (n *NATS) Close() {
	n.conn.Close()
}
