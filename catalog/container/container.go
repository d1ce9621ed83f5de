// Package container defines the archive collaborator the dispatcher uses to
// reach a catalog stored as a record inside a compressed container, and a
// UnityFS-backed implementation.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/joshuapare/catalogkit/internal/format"
	"github.com/joshuapare/catalogkit/internal/serialized"
	"github.com/joshuapare/catalogkit/internal/unityfs"
)

// ErrRecordRange is returned for record indexes outside the container.
var ErrRecordRange = errors.New("container: record out of range")

// Record is one typed record of a container.
type Record struct {
	TypeID  int32
	Name    string
	Payload []byte
	// Order is the byte order of the payload's fields.
	Order binary.ByteOrder
}

// Container is an opened archive.
type Container interface {
	// Records enumerates all records. Payloads are copies.
	Records() ([]Record, error)
	// ReplaceRecordPayload swaps the payload of record index. Every other
	// record is kept byte-for-byte.
	ReplaceRecordPayload(index int, payload []byte) error
	// Repack re-serializes the container, compressing it the way it was read.
	Repack() ([]byte, error)
}

// Opener opens containers by path.
type Opener interface {
	OpenContainer(path string) (Container, error)
}

// UnityFS opens UnityFS bundles whose nodes hold SerializedFiles.
type UnityFS struct{}

// OpenContainer reads and decodes the bundle at path.
func (UnityFS) OpenContainer(path string) (Container, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Open(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

type recordRef struct {
	node   int
	object int
}

type bundle struct {
	b     *unityfs.Bundle
	files map[int]*serialized.File
	refs  []recordRef
	dirty map[int]bool
}

// Open decodes a UnityFS image. Nodes flagged as serialized files are parsed
// as such; unflagged nodes are tried and skipped when they do not parse.
func Open(img []byte) (Container, error) {
	b, err := unityfs.Parse(img)
	if err != nil {
		return nil, err
	}
	c := &bundle{b: b, files: map[int]*serialized.File{}, dirty: map[int]bool{}}
	for i, n := range b.Nodes {
		data, err := b.NodeData(i)
		if err != nil {
			return nil, err
		}
		f, err := serialized.Parse(data)
		if err != nil {
			if n.Flags&unityfs.NodeFlagSerialized != 0 {
				return nil, fmt.Errorf("container: node %q: %w", n.Path, err)
			}
			continue
		}
		c.files[i] = f
		for j := range f.Objects {
			c.refs = append(c.refs, recordRef{node: i, object: j})
		}
	}
	return c, nil
}

func (c *bundle) Records() ([]Record, error) {
	out := make([]Record, 0, len(c.refs))
	for _, ref := range c.refs {
		f := c.files[ref.node]
		data, err := f.ObjectData(ref.object)
		if err != nil {
			return nil, err
		}
		r := Record{
			TypeID:  f.Objects[ref.object].ClassID,
			Payload: append([]byte(nil), data...),
			Order:   f.Order(),
		}
		if r.TypeID == format.TextAssetClassID {
			if name, _, err := format.DecodeTextAsset(data, f.Order()); err == nil {
				r.Name = name
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *bundle) ReplaceRecordPayload(index int, payload []byte) error {
	if index < 0 || index >= len(c.refs) {
		return fmt.Errorf("%w: index %d of %d", ErrRecordRange, index, len(c.refs))
	}
	ref := c.refs[index]
	if err := c.files[ref.node].Replace(ref.object, payload); err != nil {
		return err
	}
	c.dirty[ref.node] = true
	return nil
}

func (c *bundle) Repack() ([]byte, error) {
	for node := range c.dirty {
		if err := c.b.ReplaceNode(node, c.files[node].Bytes()); err != nil {
			return nil, err
		}
		delete(c.dirty, node)
	}
	return c.b.Bytes()
}
