// Package store keeps named DCEL snapshots in a badger key-value db.
package store

import (
	"runtime"

	"github.com/2x3systems/roadgen/libroad/dcel"
	"github.com/2x3systems/roadgen/roadgen"
	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Store db format:

	"dcel/" + name    => snapshot (see dcel.AppendEncoding)

Names are arbitrary non-empty strings.

***/

const snapshotPrefix = "dcel/"

type Opts struct {
	Path     string // db directory; empty opens an in-memory db
	ReadOnly bool
}

// Store is a db wrapper holding named DCEL snapshots.
type Store struct {
	db       *badger.DB
	readOnly bool
}

func Open(opts Opts) (*Store, error) {
	dbOpts := badger.DefaultOptions(opts.Path)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.Path) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(roadgen.ErrBadStoreParam, "Path must be specified for a read-only store")
		}
		dbOpts.InMemory = true
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening store %q", opts.Path)
	}

	klog.V(1).Infof("opened store %q (read-only: %v)", opts.Path, opts.ReadOnly)

	return &Store{
		db:       db,
		readOnly: opts.ReadOnly,
	}, nil
}

func (st *Store) IsReadOnly() bool {
	return st.readOnly
}

func snapshotKey(name string) ([]byte, error) {
	if len(name) == 0 {
		return nil, errors.Wrap(roadgen.ErrBadStoreParam, "snapshot name is empty")
	}
	return append([]byte(snapshotPrefix), name...), nil
}

// Put stores a snapshot of d under name, replacing any previous snapshot of that name.
func (st *Store) Put(name string, d *dcel.DCEL) error {
	if st.readOnly {
		return errors.Wrapf(roadgen.ErrReadOnly, "putting %q", name)
	}
	key, err := snapshotKey(name)
	if err != nil {
		return err
	}

	snapshot := d.AppendEncoding(nil)
	err = st.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, snapshot)
	})
	if err != nil {
		return err
	}

	klog.V(1).Infof("saved %q: %d nodes, %d half-edges, %d faces (%d bytes)",
		name, d.CountNodes(), d.CountHalfEdges(), d.CountFaces(), len(snapshot))
	return nil
}

// Get decodes the snapshot stored under name.
func (st *Store) Get(name string) (*dcel.DCEL, error) {
	key, err := snapshotKey(name)
	if err != nil {
		return nil, err
	}

	var d *dcel.DCEL
	err = st.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return errors.Wrapf(roadgen.ErrSnapshotNotFound, "%q", name)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			d, err = dcel.Decode(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (st *Store) Has(name string) (bool, error) {
	key, err := snapshotKey(name)
	if err != nil {
		return false, err
	}

	err = st.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	return err == nil, err
}

// Delete removes the snapshot stored under name (if any).
func (st *Store) Delete(name string) error {
	if st.readOnly {
		return errors.Wrapf(roadgen.ErrReadOnly, "deleting %q", name)
	}
	key, err := snapshotKey(name)
	if err != nil {
		return err
	}
	return st.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Names returns the names of all stored snapshots in key (sorted) order.
func (st *Store) Names() ([]string, error) {
	var names []string

	txn := st.db.NewTransaction(false)
	defer txn.Discard()

	prefix := []byte(snapshotPrefix)
	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: false,
		Prefix:         prefix,
	})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		key := it.Item().Key()
		names = append(names, string(key[len(prefix):]))
	}
	return names, nil
}

func (st *Store) Close() error {
	if st.db == nil {
		return nil
	}
	err := st.db.Close()
	st.db = nil
	klog.V(1).Info("closed store")
	return err
}
