// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state is the transactional table layer the ledger is built on. It
// exposes read transactions and a single write transaction at a time over any
// luxfi/database engine.
package state

import (
	"errors"
	"sync"

	"github.com/luxfi/cache"
	"github.com/luxfi/cache/lru"
	"github.com/luxfi/cache/metercacher"
	"github.com/luxfi/database"
	"github.com/luxfi/database/corruptabledb"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/nano/block"
)

const blockCacheSize = 64 * 1024

// Table names one logical table of the store.
type Table uint8

const (
	Accounts Table = iota
	Pending
	ConfirmationHeights
	RepWeights
	Blocks
	Singletons
)

func (t Table) String() string {
	switch t {
	case Accounts:
		return "accounts"
	case Pending:
		return "pending"
	case ConfirmationHeights:
		return "confirmation_height"
	case RepWeights:
		return "rep_weights"
	case Blocks:
		return "blocks"
	case Singletons:
		return "singletons"
	default:
		return "unknown"
	}
}

var (
	initializedKey = []byte("initialized")

	errRegistererNotRegistry = errors.New("registerer must be a Registry")
	errTxDone                = errors.New("transaction already finished")
)

// Store owns the database. Every access goes through a transaction.
type Store struct {
	db  database.Database
	log log.Logger

	// writeLock admits one write transaction at a time.
	writeLock sync.Mutex
	// commitLock is shared by open read transactions and held exclusively
	// while a write transaction flushes.
	commitLock sync.RWMutex

	// Blocks are immutable by hash, so parsed blocks are cached across
	// transactions. Sidebands are always read from the transaction.
	blockCache cache.Cacher[ids.ID, block.Block]
}

func New(db database.Database, registerer metric.Registerer, log log.Logger) (*Store, error) {
	registry, ok := registerer.(metric.Registry)
	if !ok {
		return nil, errRegistererNotRegistry
	}
	blockCache, err := metercacher.New[ids.ID, block.Block](
		"block_cache",
		registry,
		lru.NewCache[ids.ID, block.Block](blockCacheSize),
	)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:         corruptabledb.New(db, log),
		log:        log,
		blockCache: blockCache,
	}, nil
}

// BeginRead opens a read transaction. It observes every write transaction
// committed before it was opened and none committed while it is open. Callers
// must Discard it and must not open another transaction while holding it.
func (s *Store) BeginRead() *ReadTx {
	s.commitLock.RLock()
	return &ReadTx{txn: newTxn(s, s.db)}
}

// BeginWrite opens the write transaction, waiting for the previous one to
// finish. Reads through it observe its own uncommitted writes.
func (s *Store) BeginWrite() *WriteTx {
	s.writeLock.Lock()
	vdb := versiondb.New(s.db)
	return &WriteTx{
		txn: newTxn(s, vdb),
		vdb: vdb,
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ReadTx is a read-only snapshot of the store.
type ReadTx struct {
	txn
	once sync.Once
}

// Discard releases the transaction. It is safe to call more than once.
func (r *ReadTx) Discard() {
	r.once.Do(r.store.commitLock.RUnlock)
}

// WriteTx accumulates writes in memory and applies them atomically on
// Commit.
type WriteTx struct {
	txn
	vdb   *versiondb.Database
	hooks []func()
	done  bool
}

// OnCommit registers [f] to run after the writes are durable and before any
// later transaction can observe the store. Hooks run in registration order
// with the store locked, so they must not open transactions.
func (w *WriteTx) OnCommit(f func()) {
	w.hooks = append(w.hooks, f)
}

// Commit atomically applies every write of the transaction and releases it.
func (w *WriteTx) Commit() error {
	if w.done {
		return errTxDone
	}
	defer w.release()
	defer w.vdb.Abort()

	batch, err := w.vdb.CommitBatch()
	if err != nil {
		return err
	}

	w.store.commitLock.Lock()
	defer w.store.commitLock.Unlock()

	if err := batch.Write(); err != nil {
		return err
	}
	for _, f := range w.hooks {
		f()
	}
	return nil
}

// Abort discards every write of the transaction and releases it. Calling it
// after Commit is a no-op.
func (w *WriteTx) Abort() {
	if w.done {
		return
	}
	w.vdb.Abort()
	w.release()
}

func (w *WriteTx) release() {
	w.done = true
	w.hooks = nil
	w.store.writeLock.Unlock()
}

// Reader is implemented by both read and write transactions.
type Reader interface {
	Initialized() (bool, error)
	Account(account block.Account) (*AccountInfo, error)
	Accounts(f func(block.Account, *AccountInfo) error) error
	Pending(key PendingKey) (*PendingInfo, error)
	PendingFor(account block.Account) ([]PendingEntry, error)
	AnyPending(account block.Account) (bool, error)
	ConfirmationHeight(account block.Account) (ConfirmationHeightInfo, error)
	RepWeight(rep block.Account) (block.Amount, error)
	RepWeights() (map[block.Account]block.Amount, error)
	Block(hash ids.ID) (block.Block, *block.Sideband, error)
	BlockExists(hash ids.ID) (bool, error)
	Count(table Table) (uint64, error)
}

var (
	_ Reader = (*ReadTx)(nil)
	_ Reader = (*WriteTx)(nil)
)

type txn struct {
	store *Store

	accounts            database.Database
	pending             database.Database
	confirmationHeights database.Database
	repWeights          database.Database
	blocks              database.Database
	singletons          database.Database
}

func newTxn(s *Store, db database.Database) txn {
	return txn{
		store:               s,
		accounts:            prefixdb.New([]byte(Accounts.String()), db),
		pending:             prefixdb.New([]byte(Pending.String()), db),
		confirmationHeights: prefixdb.New([]byte(ConfirmationHeights.String()), db),
		repWeights:          prefixdb.New([]byte(RepWeights.String()), db),
		blocks:              prefixdb.New([]byte(Blocks.String()), db),
		singletons:          prefixdb.New([]byte(Singletons.String()), db),
	}
}

func (t *txn) table(table Table) database.Database {
	switch table {
	case Accounts:
		return t.accounts
	case Pending:
		return t.pending
	case ConfirmationHeights:
		return t.confirmationHeights
	case RepWeights:
		return t.repWeights
	case Blocks:
		return t.blocks
	default:
		return t.singletons
	}
}

func get[T any](db database.KeyValueReader, key []byte) (*T, error) {
	bytes, err := db.Get(key)
	if err != nil {
		return nil, err
	}
	var v T
	if _, err := Codec.Unmarshal(bytes, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func put[T any](db database.KeyValueWriter, key []byte, v *T) error {
	bytes, err := Codec.Marshal(CodecVersion, v)
	if err != nil {
		return err
	}
	return db.Put(key, bytes)
}

func (t *txn) Initialized() (bool, error) {
	return t.singletons.Has(initializedKey)
}

// Account returns database.ErrNotFound if [account] has no blocks.
func (t *txn) Account(account block.Account) (*AccountInfo, error) {
	return get[AccountInfo](t.accounts, account[:])
}

// Accounts calls [f] for every account in key order.
func (t *txn) Accounts(f func(block.Account, *AccountInfo) error) error {
	it := t.accounts.NewIterator()
	defer it.Release()

	for it.Next() {
		var (
			account block.Account
			info    AccountInfo
		)
		copy(account[:], it.Key())
		if _, err := Codec.Unmarshal(it.Value(), &info); err != nil {
			return err
		}
		if err := f(account, &info); err != nil {
			return err
		}
	}
	return it.Error()
}

// Pending returns database.ErrNotFound if there is no such entry.
func (t *txn) Pending(key PendingKey) (*PendingInfo, error) {
	return get[PendingInfo](t.pending, key.Bytes())
}

// PendingFor returns the entries addressed to [account] ordered by send hash.
func (t *txn) PendingFor(account block.Account) ([]PendingEntry, error) {
	it := t.pending.NewIteratorWithPrefix(account[:])
	defer it.Release()

	var entries []PendingEntry
	for it.Next() {
		entry := PendingEntry{
			Key: pendingKeyFromBytes(it.Key()),
		}
		if _, err := Codec.Unmarshal(it.Value(), &entry.Info); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, it.Error()
}

func (t *txn) AnyPending(account block.Account) (bool, error) {
	it := t.pending.NewIteratorWithPrefix(account[:])
	defer it.Release()

	return it.Next(), it.Error()
}

// ConfirmationHeight returns the zero value for an account with nothing
// cemented.
func (t *txn) ConfirmationHeight(account block.Account) (ConfirmationHeightInfo, error) {
	info, err := get[ConfirmationHeightInfo](t.confirmationHeights, account[:])
	if errors.Is(err, database.ErrNotFound) {
		return ConfirmationHeightInfo{}, nil
	}
	if err != nil {
		return ConfirmationHeightInfo{}, err
	}
	return *info, nil
}

func (t *txn) RepWeight(rep block.Account) (block.Amount, error) {
	bytes, err := t.repWeights.Get(rep[:])
	if errors.Is(err, database.ErrNotFound) {
		return block.Amount{}, nil
	}
	if err != nil {
		return block.Amount{}, err
	}
	return block.AmountFromBytes(bytes), nil
}

func (t *txn) RepWeights() (map[block.Account]block.Amount, error) {
	it := t.repWeights.NewIterator()
	defer it.Release()

	weights := make(map[block.Account]block.Amount)
	for it.Next() {
		var rep block.Account
		copy(rep[:], it.Key())
		weights[rep] = block.AmountFromBytes(it.Value())
	}
	return weights, it.Error()
}

// Block returns database.ErrNotFound if [hash] is not in the ledger.
func (t *txn) Block(hash ids.ID) (block.Block, *block.Sideband, error) {
	record, err := get[blockRecord](t.blocks, hash[:])
	if err != nil {
		return nil, nil, err
	}
	if blk, ok := t.store.blockCache.Get(hash); ok {
		return blk, &record.Sideband, nil
	}
	blk, err := block.Parse(record.Block)
	if err != nil {
		return nil, nil, err
	}
	t.store.blockCache.Put(hash, blk)
	return blk, &record.Sideband, nil
}

func (t *txn) BlockExists(hash ids.ID) (bool, error) {
	return t.blocks.Has(hash[:])
}

// Count iterates [table] and returns the number of entries.
func (t *txn) Count(table Table) (uint64, error) {
	it := t.table(table).NewIterator()
	defer it.Release()

	var count uint64
	for it.Next() {
		count++
	}
	return count, it.Error()
}

func (w *WriteTx) SetInitialized() error {
	return w.singletons.Put(initializedKey, []byte{1})
}

func (w *WriteTx) PutAccount(account block.Account, info *AccountInfo) error {
	return put(w.accounts, account[:], info)
}

func (w *WriteTx) DeleteAccount(account block.Account) error {
	return w.accounts.Delete(account[:])
}

func (w *WriteTx) PutPending(key PendingKey, info *PendingInfo) error {
	return put(w.pending, key.Bytes(), info)
}

func (w *WriteTx) DeletePending(key PendingKey) error {
	return w.pending.Delete(key.Bytes())
}

func (w *WriteTx) PutConfirmationHeight(account block.Account, info ConfirmationHeightInfo) error {
	return put(w.confirmationHeights, account[:], &info)
}

// PutRepWeight stores [weight], dropping the entry when it reaches zero.
func (w *WriteTx) PutRepWeight(rep block.Account, weight block.Amount) error {
	if weight.IsZero() {
		return w.repWeights.Delete(rep[:])
	}
	return w.repWeights.Put(rep[:], block.AmountBytes(weight))
}

func (w *WriteTx) PutBlock(blk block.Block, sideband *block.Sideband) error {
	hash := blk.Hash()
	w.store.blockCache.Put(hash, blk)
	return put(w.blocks, hash[:], &blockRecord{
		Block:    blk.Bytes(),
		Sideband: *sideband,
	})
}

// SetSuccessor rewrites the sideband of [hash] to point at [successor].
func (w *WriteTx) SetSuccessor(hash ids.ID, successor ids.ID) error {
	record, err := get[blockRecord](w.blocks, hash[:])
	if err != nil {
		return err
	}
	record.Sideband.Successor = successor
	return put(w.blocks, hash[:], record)
}

func (w *WriteTx) DeleteBlock(hash ids.ID) error {
	return w.blocks.Delete(hash[:])
}
