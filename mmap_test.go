package mmap

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestOptions_MapAnonymous(t *testing.T) {
	m, err := New(4096).Map()
	require.NoError(t, err)

	assert.Equal(t, 4096, m.Size())
	assert.NotZero(t, m.Addr())
	assert.Nil(t, m.File())
	assert.Len(t, m.Bytes(), 4096)

	// Anonymous pages are zero-initialized.
	assert.Equal(t, make([]byte, 4096), m.Bytes())

	require.NoError(t, m.Close())
	require.NoError(t, m.Close()) // idempotent
	assert.Nil(t, m.Bytes())
	assert.Zero(t, m.Addr())
}

func TestOptions_InvalidSize(t *testing.T) {
	_, err := New(0).Map()
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = New(-1).MapMut()
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestOptions_MapExecMutRequiresJIT(t *testing.T) {
	_, err := New(4096).MapExecMut()
	require.Error(t, err)

	var gate *ErrUnsafeFlagNeeded
	require.ErrorAs(t, err, &gate)
	assert.Equal(t, UnsafeJIT, gate.Flag)

	// With the flag granted the same configuration succeeds.
	m, err := New(4096).WithUnsafeFlags(UnsafeJIT).MapExecMut()
	require.NoError(t, err)

	m.Bytes()[0] = 0xc3
	require.NoError(t, m.FlushICache())
	require.NoError(t, m.Close())
}

func TestOptions_OtherProtectionsNeedNoFlags(t *testing.T) {
	for name, create := range map[string]func(*Options) (*Mapping, error){
		"none": (*Options).MapNone,
		"read": (*Options).Map,
		"exec": (*Options).MapExec,
		"mut":  (*Options).MapMut,
	} {
		m, err := create(New(4096))
		require.NoError(t, err, name)
		require.NoError(t, m.Close(), name)
	}
}

func TestMapping_MakeExecMutGate(t *testing.T) {
	m, err := New(4096).MapMut()
	require.NoError(t, err)
	defer m.Close()

	var gate *ErrUnsafeFlagNeeded
	require.ErrorAs(t, m.MakeExecMut(), &gate)
	assert.Equal(t, UnsafeJIT, gate.Flag)

	jit, err := New(4096).WithUnsafeFlags(UnsafeJIT).MapMut()
	require.NoError(t, err)
	defer jit.Close()

	require.NoError(t, jit.MakeExecMut())
	require.NoError(t, jit.FlushICache())
}

func TestMapping_ProtectionRoundTrip(t *testing.T) {
	m, err := New(4096).MapMut()
	require.NoError(t, err)
	defer m.Close()

	pattern := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 1024)
	copy(m.Bytes(), pattern)

	require.NoError(t, m.MakeReadOnly())
	assert.Equal(t, pattern, m.Bytes())

	// Transitions are not required to detect no-ops; repeating one must
	// still succeed.
	require.NoError(t, m.MakeReadOnly())

	require.NoError(t, m.MakeExec())
	require.NoError(t, m.MakeNone())
	require.NoError(t, m.MakeMut())
	assert.Equal(t, pattern, m.Bytes())
}

func TestMapping_FileBacked(t *testing.T) {
	content := bytes.Repeat([]byte("mapped file content "), 64)
	path := writeTempFile(t, content)

	f, err := os.Open(path)
	require.NoError(t, err)

	m, err := New(len(content)).WithFile(f, 0).Map()
	require.NoError(t, err)

	assert.Equal(t, content, m.Bytes())
	assert.Same(t, f, m.File())

	// Close releases the mapping and the owned file handle.
	require.NoError(t, m.Close())
	assert.Nil(t, m.File())
}

func TestMapping_FlushWritesBack(t *testing.T) {
	const size = 8192
	path := writeTempFile(t, make([]byte, size))

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)

	m, err := New(size).WithFile(f, 0).MapMut()
	require.NoError(t, err)

	pattern := bytes.Repeat([]byte{0x5a}, size)
	copy(m.Bytes(), pattern)
	require.NoError(t, m.Flush(0, size))

	on := func() []byte {
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		return b
	}
	assert.Equal(t, pattern, on())

	require.NoError(t, m.Close())
	assert.Equal(t, pattern, on())
}

func TestMapping_FlushRangeChecks(t *testing.T) {
	m, err := New(4096).MapMut()
	require.NoError(t, err)
	defer m.Close()

	// Empty and inverted ranges are no-op successes on every platform.
	assert.NoError(t, m.FlushAsync(0, 0))
	assert.NoError(t, m.FlushAsync(100, 100))
	assert.NoError(t, m.FlushAsync(200, 100))
	assert.NoError(t, m.Flush(4096, 4096))

	assert.ErrorIs(t, m.Flush(-1, 10), ErrOutOfBounds)
	assert.ErrorIs(t, m.FlushAsync(0, 4097), ErrOutOfBounds)
}

func TestMapping_CopyOnWrite(t *testing.T) {
	content := bytes.Repeat([]byte{0x11}, 4096)
	path := writeTempFile(t, content)

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)

	m, err := New(len(content)).WithFile(f, 0).WithFlags(CopyOnWrite).MapMut()
	require.NoError(t, err)

	for i := range m.Bytes() {
		m.Bytes()[i] = 0x22
	}
	require.NoError(t, m.Close())

	// Writes went to private pages; the file is untouched.
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, b)
}

func TestMapping_LockUnlock(t *testing.T) {
	pageSize, _ := PageSizes()
	m, err := New(pageSize).MapMut()
	require.NoError(t, err)
	defer m.Close()

	if err := m.Lock(); err != nil {
		// Typically RLIMIT_MEMLOCK in constrained environments.
		t.Skipf("cannot lock pages: %v", err)
	}
	require.NoError(t, m.Unlock())
}

func TestMapping_LockedFlag(t *testing.T) {
	pageSize, _ := PageSizes()
	m, err := New(pageSize).WithFlags(Locked).MapMut()
	if err != nil {
		t.Skipf("cannot create locked mapping: %v", err)
	}
	require.NoError(t, m.Close())
}

func TestMapping_OperationsAfterClose(t *testing.T) {
	m, err := New(4096).MapMut()
	require.NoError(t, err)
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Lock(), ErrClosed)
	assert.ErrorIs(t, m.Unlock(), ErrClosed)
	assert.ErrorIs(t, m.Flush(0, 4096), ErrClosed)
	assert.ErrorIs(t, m.FlushAsync(0, 4096), ErrClosed)
	assert.ErrorIs(t, m.FlushICache(), ErrClosed)
	assert.ErrorIs(t, m.MakeReadOnly(), ErrClosed)
	assert.ErrorIs(t, m.MakeNone(), ErrClosed)
}

func TestPageSizes(t *testing.T) {
	pageSize, granularity := PageSizes()
	assert.Positive(t, pageSize)
	assert.Positive(t, granularity)
	assert.Zero(t, pageSize&(pageSize-1), "page size must be a power of two")
	assert.GreaterOrEqual(t, granularity, pageSize)
}

func TestMapping_ConcurrentCreateClose(t *testing.T) {
	pageSize, _ := PageSizes()

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for j := range 16 {
				m, err := New(pageSize).MapMut()
				if err != nil {
					return err
				}
				m.Bytes()[0] = byte(j)
				if err := m.Close(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestFlagStrings(t *testing.T) {
	assert.Equal(t, "0", Flags(0).String())
	assert.Equal(t, "COPY_ON_WRITE|LOCKED", (CopyOnWrite | Locked).String())
	assert.Equal(t, "MAP_FIXED|JIT", (UnsafeMapFixed | UnsafeJIT).String())
	assert.Equal(t, "JIT", UnsafeJIT.String())
	assert.Equal(t, uint64(2<<20), PageSize2MB.Bytes())
}

func writeTempFile(t *testing.T, content []byte) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "mmap_test")
	require.NoError(t, err)
	_, err = f.Write(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}
