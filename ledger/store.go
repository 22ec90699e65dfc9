// Package ledger is the persistent chain store (spec.md §4.7, C7): it opens
// an embedded SQLite file, appends builder-staged blocks to it atomically,
// and re-materializes any committed block on demand. It is grounded on
// internal/db/db.go's Connect/WithTx/sentinel-error shape and on
// internal/blockchain/chain.go's loadChain/createBlockLocked control flow,
// adapted from a pooled PostgreSQL connection to a single embedded file.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ledgerchain/ledgerchain/block"
	"github.com/ledgerchain/ledgerchain/codec"
	"github.com/ledgerchain/ledgerchain/events"
	"github.com/ledgerchain/ledgerchain/internal/telemetry"
	"github.com/ledgerchain/ledgerchain/record"
	"github.com/ledgerchain/ledgerchain/signing"
)

//go:embed schema.sql
var schemaSQL string

// Store is an embedded, append-only chain of blocks over record type R,
// backed by a single SQLite file. Appends are serialized through mu — a
// ledger has exactly one writer at a time. Len and BlockAt do not take mu
// and may run concurrently with each other and with an in-flight append's
// SELECTs; Tip takes mu, so it waits for an in-flight append to finish.
type Store[R any] struct {
	db       *sql.DB
	mu       sync.Mutex
	bus      events.Bus
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	location string
	closed   bool
}

// Option configures a Store at Open time.
type Option[R any] func(*Store[R])

// WithBus registers a Bus that receives a BlockCommitted event after every
// successful Append.
func WithBus[R any](bus events.Bus) Option[R] {
	return func(s *Store[R]) { s.bus = bus }
}

// WithLogger overrides the Store's structured logger.
func WithLogger[R any](logger *slog.Logger) Option[R] {
	return func(s *Store[R]) { s.logger = logger }
}

// WithMetrics attaches a Prometheus collector set that Append and BlockAt
// update on every call.
func WithMetrics[R any](metrics *telemetry.Metrics) Option[R] {
	return func(s *Store[R]) { s.metrics = metrics }
}

// Open connects to (or creates) the SQLite file at cfg.Location, ensures its
// schema is present and compatible, and returns a ready-to-use Store.
func Open[R any](ctx context.Context, cfg Config, opts ...Option[R]) (*Store[R], error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cfg.Location, cfg.BusyTimeout.Milliseconds())

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrStorage, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrStorage, err)
	}

	s := &Store[R]{
		db:       sqlDB,
		location: cfg.Location,
		bus:      events.NoopBus{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ensureSchema(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return s, nil
}

// ensureSchema creates the schema on a fresh database, or checks the
// existing schema_version against what this build of the library writes.
func (s *Store[R]) ensureSchema(ctx context.Context) error {
	var version int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case err == nil:
		if version != schemaVersion {
			return fmt.Errorf("%w: store has version %d, library expects %d", ErrIncompatibleVersion, version, schemaVersion)
		}
		return nil
	case errors.Is(err, sql.ErrNoRows):
		_, err := s.db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion)
		if err != nil {
			return fmt.Errorf("%w: seed schema version: %v", ErrStorage, err)
		}
		return nil
	default:
		// Table doesn't exist yet: this is a brand-new database file.
		if _, execErr := s.db.ExecContext(ctx, schemaSQL); execErr != nil {
			return fmt.Errorf("%w: create schema: %v", ErrStorage, execErr)
		}
		if _, execErr := s.db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); execErr != nil {
			return fmt.Errorf("%w: seed schema version: %v", ErrStorage, execErr)
		}
		return nil
	}
}

// Close closes the underlying database file. Further calls return ErrClosed.
func (s *Store[R]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Append seals builder's staged records into a new block, writes the header
// and every record in a single transaction, and — on success — publishes a
// BlockCommitted event. The returned header's Position is the block's index
// in the chain.
func (s *Store[R]) Append(ctx context.Context, builder *block.UnchainedInstance[R]) (header block.ChainedInstance, err error) {
	ctx, span := telemetry.StartSpan(ctx, "append")
	start := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
		if s.metrics != nil {
			s.metrics.AppendDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				s.metrics.AppendFailureCount.Inc()
			} else {
				s.metrics.AppendCount.Inc()
				s.metrics.ChainLength.Set(float64(header.Position + 1))
			}
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return block.ChainedInstance{}, ErrClosed
	}
	blk, err := block.FromUnchained(builder)
	if err != nil {
		return block.ChainedInstance{}, err
	}

	tip, hasTip, err := s.tipLocked(ctx)
	if err != nil {
		return block.ChainedInstance{}, err
	}

	var prevHash codec.Hash
	var position, recordsStart uint64
	if hasTip {
		prevHash = tip.Hash
		position = tip.Position + 1
		recordsStart = tip.RecordsRange.End
	}
	recordsEnd := recordsStart + uint64(blk.Len())

	header, err = block.Seal(builder.Nonce(), position, time.Now().Unix(), prevHash, blk.MerkleRoot(),
		block.RecordRange{Start: recordsStart, End: recordsEnd})
	if err != nil {
		return block.ChainedInstance{}, err
	}

	metadataBlob, err := codec.Encode(builder.Metadata())
	if err != nil {
		return block.ChainedInstance{}, fmt.Errorf("%w: encode block metadata: %v", ErrStorage, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return block.ChainedInstance{}, fmt.Errorf("%w: begin transaction: %v", ErrStorage, err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO blocks (position, nonce, timestamp, hash, prev_hash, merkle_root, records_start, records_end, metadata_blob)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		header.Position, header.Nonce, header.Timestamp, header.Hash[:], header.PrevHash[:], header.MerkleRoot[:],
		header.RecordsRange.Start, header.RecordsRange.End, metadataBlob)
	if err != nil {
		return block.ChainedInstance{}, fmt.Errorf("%w: insert block: %v", ErrStorage, err)
	}

	for i, r := range blk.Records() {
		recordBlob, err := codec.Encode(r.Record())
		if err != nil {
			return block.ChainedInstance{}, fmt.Errorf("%w: encode record %d: %v", ErrStorage, i, err)
		}
		metaBlob, err := codec.Encode(r.Metadata)
		if err != nil {
			return block.ChainedInstance{}, fmt.Errorf("%w: encode record %d metadata: %v", ErrStorage, i, err)
		}
		rh := r.Hash()
		offset := recordsStart + uint64(i)

		_, err = tx.ExecContext(ctx,
			`INSERT INTO records (offset, block_position, record_blob, signature, signer, signer_algorithm, hash, metadata_blob)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			offset, header.Position, recordBlob, []byte(r.Signature.Bytes), []byte(r.Signer.Bytes),
			string(r.Signer.Algorithm), rh[:], metaBlob)
		if err != nil {
			return block.ChainedInstance{}, fmt.Errorf("%w: insert record %d: %v", ErrStorage, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return block.ChainedInstance{}, fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	committed = true

	s.logger.Info("appended block", "position", header.Position, "records", blk.Len(), "hash", header.Hash.String())

	if pubErr := s.bus.Publish(ctx, events.NewEvent(events.EventBlockCommitted, events.BlockCommitted{
		Position:    header.Position,
		Nonce:       header.Nonce,
		Hash:        header.Hash,
		PrevHash:    header.PrevHash,
		MerkleRoot:  header.MerkleRoot,
		RecordCount: blk.Len(),
		Timestamp:   header.Timestamp,
	})); pubErr != nil {
		s.logger.Warn("block committed event publish failed", "position", header.Position, "error", pubErr)
	}

	return header, nil
}

// Len returns the number of blocks committed to the chain.
func (s *Store[R]) Len(ctx context.Context) (uint64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	var count uint64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blocks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count blocks: %v", ErrStorage, err)
	}
	return count, nil
}

// Tip returns the most recently committed block's header, and false if the
// chain is empty.
func (s *Store[R]) Tip(ctx context.Context) (block.ChainedInstance, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return block.ChainedInstance{}, false, ErrClosed
	}
	return s.tipLocked(ctx)
}

func (s *Store[R]) tipLocked(ctx context.Context) (block.ChainedInstance, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT position, nonce, timestamp, hash, prev_hash, merkle_root, records_start, records_end
		 FROM blocks ORDER BY position DESC LIMIT 1`)
	header, err := scanHeaderRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return block.ChainedInstance{}, false, nil
		}
		return block.ChainedInstance{}, false, fmt.Errorf("%w: query tip: %v", ErrStorage, err)
	}
	return header, true, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanHeaderRow(row rowScanner) (block.ChainedInstance, error) {
	var h block.ChainedInstance
	var hash, prevHash, merkleRoot []byte
	if err := row.Scan(&h.Position, &h.Nonce, &h.Timestamp, &hash, &prevHash, &merkleRoot,
		&h.RecordsRange.Start, &h.RecordsRange.End); err != nil {
		return block.ChainedInstance{}, err
	}
	copy(h.Hash[:], hash)
	copy(h.PrevHash[:], prevHash)
	copy(h.MerkleRoot[:], merkleRoot)
	return h, nil
}

// BlockAt re-materializes the committed block at position, along with its
// chain header. It returns ErrNotFound if no block occupies that position.
func (s *Store[R]) BlockAt(ctx context.Context, position uint64) (blk *block.Block[R], header block.ChainedInstance, err error) {
	ctx, span := telemetry.StartSpan(ctx, "block_at")
	start := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
		if s.metrics != nil {
			s.metrics.BlockReadDuration.Observe(time.Since(start).Seconds())
			if err == nil {
				s.metrics.BlockReadCount.Inc()
			}
		}
	}()

	if s.closed {
		return nil, block.ChainedInstance{}, ErrClosed
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT position, nonce, timestamp, hash, prev_hash, merkle_root, records_start, records_end
		 FROM blocks WHERE position = ?`, position)
	header, err = scanHeaderRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, block.ChainedInstance{}, ErrNotFound
		}
		return nil, block.ChainedInstance{}, fmt.Errorf("%w: query block %d: %v", ErrStorage, position, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record_blob, signature, signer, signer_algorithm, hash, metadata_blob
		 FROM records WHERE block_position = ? ORDER BY offset ASC`, position)
	if err != nil {
		return nil, block.ChainedInstance{}, fmt.Errorf("%w: query records for block %d: %v", ErrStorage, position, err)
	}
	defer rows.Close()

	var records []record.SignedRecord[R]
	for rows.Next() {
		var recordBlob, sigBytes, signerBytes, hashBytes, metaBlob []byte
		var algorithm string
		if err := rows.Scan(&recordBlob, &sigBytes, &signerBytes, &algorithm, &hashBytes, &metaBlob); err != nil {
			return nil, block.ChainedInstance{}, fmt.Errorf("%w: scan record: %v", ErrStorage, err)
		}

		var value R
		if err := codec.Decode(recordBlob, &value); err != nil {
			return nil, block.ChainedInstance{}, fmt.Errorf("%w: decode record value: %v", ErrStorage, err)
		}
		var meta record.Metadata
		if err := codec.Decode(metaBlob, &meta); err != nil {
			return nil, block.ChainedInstance{}, fmt.Errorf("%w: decode record metadata: %v", ErrStorage, err)
		}
		var h codec.Hash
		copy(h[:], hashBytes)

		records = append(records, record.SignedRecord[R]{
			Value:     value,
			Signature: signing.Signature{Algorithm: signing.Algorithm(algorithm), Bytes: sigBytes},
			Signer:    signing.PublicKey{Algorithm: signing.Algorithm(algorithm), Bytes: signerBytes},
			RecHash:   h,
			Metadata:  meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, block.ChainedInstance{}, fmt.Errorf("%w: iterate records for block %d: %v", ErrStorage, position, err)
	}

	blk, err = block.NewBlock(records)
	if err != nil {
		return nil, block.ChainedInstance{}, err
	}
	return blk, header, nil
}

// VerifyChain walks every committed block in order and checks that each
// one's prev_hash links to the preceding block's hash, its header hash
// reseals to the stored value, and its records re-verify against its
// Merkle root. It is the storage-backed counterpart of
// internal/blockchain/chain.go's VerifyChain.
func (s *Store[R]) VerifyChain(ctx context.Context) (err error) {
	defer func() {
		if err != nil && s.metrics != nil {
			s.metrics.ValidationFailures.Inc()
		}
	}()

	count, err := s.Len(ctx)
	if err != nil {
		return err
	}

	var prev block.ChainedInstance
	for pos := uint64(0); pos < count; pos++ {
		blk, header, blockErr := s.BlockAt(ctx, pos)
		if blockErr != nil {
			return blockErr
		}

		if pos > 0 && header.PrevHash != prev.Hash {
			return fmt.Errorf("%w: block %d prev_hash does not match block %d hash", ErrInvariant, pos, pos-1)
		}

		resealed, sealErr := block.Seal(header.Nonce, header.Position, header.Timestamp, header.PrevHash,
			header.MerkleRoot, header.RecordsRange)
		if sealErr != nil {
			return sealErr
		}
		if resealed.Hash != header.Hash {
			return fmt.Errorf("%w: block %d header hash does not match its own fields", ErrInvariant, pos)
		}

		if validateErr := blk.Validate(header); validateErr != nil {
			return fmt.Errorf("%w: block %d: %v", ErrInvariant, pos, validateErr)
		}

		prev = header
	}

	return nil
}
