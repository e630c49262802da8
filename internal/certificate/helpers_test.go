package certificate

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/wipecert/internal/clock"
	"github.com/mrz1836/wipecert/internal/domain"
)

//nolint:gochecknoglobals // keys are expensive, generate once per test binary
var (
	keysOnce sync.Once
	ownKey   *rsa.PrivateKey
	otherKey *rsa.PrivateKey
	errKeys  error
)

func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keysOnce.Do(func() {
		ownKey, errKeys = rsa.GenerateKey(rand.Reader, 2048)
		if errKeys != nil {
			return
		}
		otherKey, errKeys = rsa.GenerateKey(rand.Reader, 2048)
	})
	require.NoError(t, errKeys)
	return ownKey, otherKey
}

func publicPEM(t *testing.T, key *rsa.PrivateKey) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// completedAt is 1700000000 in unix seconds.
//
//nolint:gochecknoglobals // fixed test instant
var completedAt = time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)

func testDrive() domain.DriveDescriptor {
	return domain.DriveDescriptor{Path: "/dev/sdX", Model: "TestDisk", Size: "10GiB", Serial: "SN123"}
}

func testRecord() Record {
	return NewBuilder(clock.Fixed(completedAt)).Build(
		testDrive(),
		domain.MethodOverwrite,
		domain.Succeeded("Overwrite successful.", 10<<20, 3),
	)
}
