package distribution

import (
	"errors"
	"fmt"
	"time"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	bolt "go.etcd.io/bbolt"
)

var (
	ErrNotFound      = errors.New("distribution: record not found")
	ErrAlreadyExists = errors.New("distribution: record already exists")
)

var (
	bucketPolicy   = []byte("policy")
	bucketGlobal   = []byte("global")
	bucketDaily    = []byte("daily")
	bucketTreasury = []byte("treasury")
	bucketPosition = []byte("position")
	bucketPending  = []byte("pending")
)

// Store persists distribution records in an embedded bbolt database. Every
// caller-facing operation runs inside a single read-write transaction, so a
// failed operation leaves no partial state behind.
type Store struct {
	db *bolt.DB
}

// OpenStore opens (creating if needed) the database at path.
func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	err = db.Update(func(btx *bolt.Tx) error {
		for _, name := range [][]byte{bucketPolicy, bucketGlobal, bucketDaily, bucketTreasury, bucketPosition, bucketPending} {
			if _, err := btx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Update runs fn in a read-write transaction; all writes commit together or
// not at all.
func (s *Store) Update(fn func(tx *Tx) error) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(&Tx{btx: btx})
	})
}

// View runs fn in a read-only transaction.
func (s *Store) View(fn func(tx *Tx) error) error {
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(&Tx{btx: btx})
	})
}

// Tx exposes typed record access within one store transaction.
type Tx struct {
	btx *bolt.Tx
}

func putRecord(tx *Tx, bucket, key []byte, v interface{}) error {
	data, err := binary.MarshalBorsh(v)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return tx.btx.Bucket(bucket).Put(key, data)
}

func getRecord(tx *Tx, bucket, key []byte, v interface{}) error {
	data := tx.btx.Bucket(bucket).Get(key)
	if data == nil {
		return ErrNotFound
	}
	if err := binary.UnmarshalBorsh(v, data); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

func createRecord(tx *Tx, bucket, key []byte, v interface{}) error {
	if tx.btx.Bucket(bucket).Get(key) != nil {
		return ErrAlreadyExists
	}
	return putRecord(tx, bucket, key, v)
}

func (tx *Tx) Policy(mint solana.PublicKey) (*PolicyState, error) {
	p := &PolicyState{}
	if err := getRecord(tx, bucketPolicy, policyKey(mint), p); err != nil {
		return nil, err
	}
	return p, nil
}

func (tx *Tx) CreatePolicy(p *PolicyState) error {
	return createRecord(tx, bucketPolicy, policyKey(p.QuoteMint), p)
}

func (tx *Tx) Global(mint solana.PublicKey) (*GlobalDistributionState, error) {
	g := &GlobalDistributionState{}
	if err := getRecord(tx, bucketGlobal, globalKey(mint), g); err != nil {
		return nil, err
	}
	return g, nil
}

func (tx *Tx) CreateGlobal(g *GlobalDistributionState) error {
	return createRecord(tx, bucketGlobal, globalKey(g.QuoteMint), g)
}

func (tx *Tx) PutGlobal(g *GlobalDistributionState) error {
	return putRecord(tx, bucketGlobal, globalKey(g.QuoteMint), g)
}

func (tx *Tx) Daily(mint solana.PublicKey, day int64) (*DailyDistributionState, error) {
	d := &DailyDistributionState{}
	if err := getRecord(tx, bucketDaily, dailyKey(mint, day), d); err != nil {
		return nil, err
	}
	return d, nil
}

func (tx *Tx) CreateDaily(d *DailyDistributionState) error {
	return createRecord(tx, bucketDaily, dailyKey(d.QuoteMint, d.DistributionDay), d)
}

func (tx *Tx) PutDaily(d *DailyDistributionState) error {
	return putRecord(tx, bucketDaily, dailyKey(d.QuoteMint, d.DistributionDay), d)
}

func (tx *Tx) Treasury(mint solana.PublicKey) (*TreasuryState, error) {
	t := &TreasuryState{}
	if err := getRecord(tx, bucketTreasury, treasuryKey(mint), t); err != nil {
		return nil, err
	}
	return t, nil
}

func (tx *Tx) CreateTreasury(t *TreasuryState) error {
	return createRecord(tx, bucketTreasury, treasuryKey(t.QuoteMint), t)
}

func (tx *Tx) PutTreasury(t *TreasuryState) error {
	return putRecord(tx, bucketTreasury, treasuryKey(t.QuoteMint), t)
}

func (tx *Tx) Position(mint solana.PublicKey) (*PositionMetadata, error) {
	p := &PositionMetadata{}
	if err := getRecord(tx, bucketPosition, positionKey(mint), p); err != nil {
		return nil, err
	}
	return p, nil
}

func (tx *Tx) CreatePosition(p *PositionMetadata) error {
	return createRecord(tx, bucketPosition, positionKey(p.QuoteMint), p)
}

func (tx *Tx) Pending(mint solana.PublicKey, day int64) (*PendingOperation, error) {
	p := &PendingOperation{}
	if err := getRecord(tx, bucketPending, pendingKey(mint, day), p); err != nil {
		return nil, err
	}
	return p, nil
}

func (tx *Tx) PutPending(p *PendingOperation) error {
	return putRecord(tx, bucketPending, pendingKey(p.QuoteMint, p.Day), p)
}

func (tx *Tx) DeletePending(mint solana.PublicKey, day int64) error {
	return tx.btx.Bucket(bucketPending).Delete(pendingKey(mint, day))
}
