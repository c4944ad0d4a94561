package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog/log"

	"ragcore/internal/apperr"
	"ragcore/internal/config"
	"ragcore/internal/ragtypes"
)

// clickHouseStore is the production Store, backed by the native ClickHouse
// driver. Connection establishment is memoised so a second Connect call
// while one is already in flight awaits the same attempt rather than racing
// it, per the adapter's concurrency contract.
type clickHouseStore struct {
	cfg config.StoreConfig

	mu         sync.Mutex
	conn       clickhouse.Conn
	connecting chan struct{} // non-nil while a connect is in flight
	connectErr error

	chunkTable  string
	headerTable string
	imageTable  string
}

// New constructs the production ClickHouse-backed Store. Connect must be
// called (directly, or implicitly via the first operation) before use.
func New(cfg config.StoreConfig) Store {
	return &clickHouseStore{
		cfg:         cfg,
		chunkTable:  identOrDefault(cfg.ChunkTable, "chunks"),
		headerTable: identOrDefault(cfg.HeaderTable, "headers"),
		imageTable:  identOrDefault(cfg.ImageTable, "images"),
	}
}

func identOrDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

// Connect is idempotent and safe for concurrent callers: a connect already
// in flight is awaited by subsequent callers instead of starting a second
// one. Uses exponential backoff up to the configured retry bound and a
// per-attempt connect timeout.
func (c *clickHouseStore) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	if c.connecting != nil {
		ch := c.connecting
		c.mu.Unlock()
		select {
		case <-ch:
			c.mu.Lock()
			err := c.connectErr
			c.mu.Unlock()
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	ch := make(chan struct{})
	c.connecting = ch
	c.mu.Unlock()

	err := c.connectOnce(ctx)

	c.mu.Lock()
	c.connectErr = err
	c.connecting = nil
	c.mu.Unlock()
	close(ch)
	return err
}

func (c *clickHouseStore) connectOnce(ctx context.Context) error {
	retries := c.cfg.ConnectRetries
	if retries <= 0 {
		retries = 6
	}
	delay := c.cfg.ConnectRetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	const maxWait = 30 * time.Second
	timeout := c.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		cctx, cancel := context.WithTimeout(ctx, timeout)
		conn, err := clickhouse.Open(&clickhouse.Options{
			Addr: []string{fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)},
			Auth: clickhouse.Auth{
				Database: "default",
				Username: c.cfg.User,
				Password: c.cfg.Password,
			},
			DialTimeout: timeout,
		})
		if err == nil {
			err = conn.Ping(cctx)
		}
		cancel()
		if err == nil {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
			return nil
		}
		if conn != nil {
			_ = conn.Close()
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt+1).Int("max", retries).Msg("clickhouse connect failed, retrying")
		wait := delay * time.Duration(1<<uint(attempt))
		if wait > maxWait {
			wait = maxWait
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("vectorstore: connect failed after %d attempts: %w: %v", retries, apperr.ErrTransientStore, lastErr)
}

func (c *clickHouseStore) resetConnection() {
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()
}

func (c *clickHouseStore) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *clickHouseStore) activeConn(ctx context.Context) (clickhouse.Conn, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("vectorstore: %w: no connection after Connect", apperr.ErrTransientStore)
	}
	return conn, nil
}

// ExecuteSimple is the prepared-statement primitive: it re-prepares for
// every call (no cached statement handles survive across calls), and on a
// connection-class error it resets and reconnects once before retrying,
// surfacing a second failure wrapped as apperr.ErrPersistentStore.
func (c *clickHouseStore) ExecuteSimple(ctx context.Context, sqlText string, args ...any) ([]Row, error) {
	rows, err := c.executeOnce(ctx, sqlText, args...)
	if err == nil {
		return rows, nil
	}
	if !apperr.IsTransient(err) {
		return nil, err
	}
	c.resetConnection()
	rows, err2 := c.executeOnce(ctx, sqlText, args...)
	if err2 != nil {
		return nil, fmt.Errorf("vectorstore: %w: retry after reconnect failed: %v", apperr.ErrPersistentStore, err2)
	}
	return rows, nil
}

func (c *clickHouseStore) executeOnce(ctx context.Context, sqlText string, args ...any) ([]Row, error) {
	conn, err := c.activeConn(ctx)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(sqlText)
	upper := strings.ToUpper(trimmed)
	isQuery := strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH")
	if !isQuery {
		if err := conn.Exec(ctx, trimmed, args...); err != nil {
			return nil, err
		}
		return nil, nil
	}

	rs, err := conn.Query(ctx, trimmed, args...)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	names := rs.Columns()
	colTypes := rs.ColumnTypes()
	var out []Row
	for rs.Next() {
		dests := make([]any, len(colTypes))
		for i, ct := range colTypes {
			dests[i] = reflect.New(ct.ScanType()).Interface()
		}
		if err := rs.Scan(dests...); err != nil {
			return nil, err
		}
		row := make(Row, len(names))
		for i, n := range names {
			row[strings.ToLower(n)] = reflect.ValueOf(dests[i]).Elem().Interface()
		}
		out = append(out, row)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureChunkTable probes with a bounded SELECT and creates the table on
// failure.
func (c *clickHouseStore) EnsureChunkTable(ctx context.Context) error {
	if _, err := c.ExecuteSimple(ctx, fmt.Sprintf("SELECT id FROM %s LIMIT 1", c.chunkTable)); err == nil {
		return nil
	}
	if _, err := c.ExecuteSimple(ctx, chunkTableDDL(c.chunkTable, c.cfg.Dimension)); err != nil {
		return fmt.Errorf("vectorstore: %w: create chunk table: %v", apperr.ErrPersistentStore, err)
	}
	return nil
}

func (c *clickHouseStore) EnsureHeaderTable(ctx context.Context) error {
	if _, err := c.ExecuteSimple(ctx, fmt.Sprintf("SELECT document_id FROM %s LIMIT 1", c.headerTable)); err == nil {
		return nil
	}
	if _, err := c.ExecuteSimple(ctx, headerTableDDL(c.headerTable, c.cfg.Dimension)); err != nil {
		return fmt.Errorf("vectorstore: %w: create header table: %v", apperr.ErrPersistentStore, err)
	}
	return nil
}

// EnsureImageTable probes, creates on absence, and if the table exists but
// is missing the description_embedding column (an older schema), attempts
// an ALTER TABLE ADD COLUMN. If that alter itself fails, the error is
// fatal and tells operators to drop and re-ingest rather than silently run
// with a degraded image table.
func (c *clickHouseStore) EnsureImageTable(ctx context.Context) error {
	if _, err := c.ExecuteSimple(ctx, fmt.Sprintf("SELECT image_id FROM %s LIMIT 1", c.imageTable)); err != nil {
		if _, err := c.ExecuteSimple(ctx, imageTableDDL(c.imageTable, c.cfg.Dimension)); err != nil {
			return fmt.Errorf("vectorstore: %w: create image table: %v", apperr.ErrPersistentStore, err)
		}
		return nil
	}
	if _, err := c.ExecuteSimple(ctx, fmt.Sprintf("SELECT description_embedding FROM %s LIMIT 1", c.imageTable)); err == nil {
		return nil
	}
	alterSQL := fmt.Sprintf("ALTER TABLE %s ADD COLUMN description_embedding Array(Float32)", c.imageTable)
	if _, err := c.ExecuteSimple(ctx, alterSQL); err != nil {
		return fmt.Errorf("vectorstore: %w: image table %q is missing description_embedding and could not be altered; drop and re-ingest: %v",
			apperr.ErrPersistentStore, c.imageTable, err)
	}
	return nil
}

func (c *clickHouseStore) UpsertChunk(ctx context.Context, ck ragtypes.Chunk) error {
	meta, err := json.Marshal(ck.Metadata)
	if err != nil {
		return fmt.Errorf("vectorstore: %w: marshal chunk metadata: %v", apperr.ErrInput, err)
	}
	del := fmt.Sprintf("ALTER TABLE %s DELETE WHERE id = ?", c.chunkTable)
	if _, err := c.ExecuteSimple(ctx, del, ck.ChunkID); err != nil {
		return fmt.Errorf("vectorstore: %w: delete existing chunk: %v", apperr.ErrPersistentStore, err)
	}
	ins := fmt.Sprintf("INSERT INTO %s (id, content, metadata, embedding) VALUES (?, ?, ?, ?)", c.chunkTable)
	if _, err := c.ExecuteSimple(ctx, ins, ck.ChunkID, ck.Content, string(meta), ck.Embedding); err != nil {
		return fmt.Errorf("vectorstore: %w: insert chunk: %v", apperr.ErrPersistentStore, err)
	}
	return nil
}

func (c *clickHouseStore) UpsertHeader(ctx context.Context, d ragtypes.Document) error {
	del := fmt.Sprintf("ALTER TABLE %s DELETE WHERE tenant_id = ? AND document_id = ?", c.headerTable)
	if _, err := c.ExecuteSimple(ctx, del, d.TenantID, d.DocumentID); err != nil {
		return fmt.Errorf("vectorstore: %w: delete existing header: %v", apperr.ErrPersistentStore, err)
	}
	ins := fmt.Sprintf(`INSERT INTO %s
		(tenant_id, document_id, source_filename, document_type, language, title, summary, total_pages, chunk_count, created_at, summary_embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, c.headerTable)
	if _, err := c.ExecuteSimple(ctx, ins,
		d.TenantID, d.DocumentID, d.SourceFilename, string(d.DocumentType), d.Language,
		d.Title, d.Summary, int32(d.TotalPages), int32(d.ChunkCount), d.CreatedAt, d.SummaryEmbedding,
	); err != nil {
		return fmt.Errorf("vectorstore: %w: insert header: %v", apperr.ErrPersistentStore, err)
	}
	return nil
}

func (c *clickHouseStore) UpsertImage(ctx context.Context, img ragtypes.Image) error {
	del := fmt.Sprintf("ALTER TABLE %s DELETE WHERE image_id = ?", c.imageTable)
	if _, err := c.ExecuteSimple(ctx, del, img.ImageID); err != nil {
		return fmt.Errorf("vectorstore: %w: delete existing image: %v", apperr.ErrPersistentStore, err)
	}
	degraded := uint8(0)
	if img.Degraded {
		degraded = 1
	}
	ins := fmt.Sprintf(`INSERT INTO %s
		(image_id, document_id, tenant_id, page_number, mime_type, width, height, description, description_embedding, image_data, degraded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, c.imageTable)
	if _, err := c.ExecuteSimple(ctx, ins,
		img.ImageID, img.DocumentID, img.TenantID, int32(img.PageNumber), img.MimeType,
		int32(img.Width), int32(img.Height), img.Description, img.DescriptionEmbedding,
		string(img.ImageData), degraded, img.CreatedAt,
	); err != nil {
		return fmt.Errorf("vectorstore: %w: insert image: %v", apperr.ErrPersistentStore, err)
	}
	return nil
}

func (c *clickHouseStore) QueryChunks(ctx context.Context, p ChunkQuery) ([]ragtypes.Chunk, error) {
	if p.K <= 0 {
		return nil, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT id, content, metadata,
		1 - cosineDistance(embedding, %s) AS score
		FROM %s WHERE JSONExtractString(metadata, 'tenant_id') = ?`, vectorLiteral(p.QueryVector), c.chunkTable)
	args := []any{p.TenantID}
	if len(p.DocumentIDs) > 0 {
		b.WriteString(" AND JSONExtractString(metadata, 'document_id') IN (")
		for i, id := range p.DocumentIDs {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('?')
			args = append(args, id)
		}
		b.WriteByte(')')
	}
	b.WriteString(" ORDER BY score DESC LIMIT ?")
	args = append(args, p.K)

	rows, err := c.ExecuteSimple(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: %w: query chunks: %v", apperr.ErrPersistentStore, err)
	}
	out := make([]ragtypes.Chunk, 0, len(rows))
	for _, r := range rows {
		ck, err := chunkFromRow(r)
		if err != nil {
			continue
		}
		ck.Score = float32(r.Float64("score"))
		out = append(out, ck)
	}
	return out, nil
}

func (c *clickHouseStore) QueryHeaders(ctx context.Context, p HeaderQuery) ([]ragtypes.Document, error) {
	if p.K <= 0 {
		return nil, nil
	}
	q := fmt.Sprintf(`SELECT tenant_id, document_id, source_filename, document_type, language, title, summary,
		total_pages, chunk_count, created_at,
		1 - cosineDistance(summary_embedding, %s) AS score
		FROM %s WHERE tenant_id = ? ORDER BY score DESC LIMIT ?`, vectorLiteral(p.QueryVector), c.headerTable)
	rows, err := c.ExecuteSimple(ctx, q, p.TenantID, p.K)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: %w: query headers: %v", apperr.ErrPersistentStore, err)
	}
	out := make([]ragtypes.Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, documentFromRow(r))
	}
	return out, nil
}

func (c *clickHouseStore) QueryImages(ctx context.Context, p ImageQuery) ([]ragtypes.Image, error) {
	if p.K <= 0 {
		return nil, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT image_id, document_id, tenant_id, page_number, mime_type, width, height, description,
		degraded, created_at, 1 - cosineDistance(description_embedding, %s) AS score
		FROM %s WHERE length(description_embedding) > 0`, vectorLiteral(p.QueryVector), c.imageTable)
	args := []any{}
	if len(p.DocumentIDs) > 0 {
		b.WriteString(" AND document_id IN (")
		for i, id := range p.DocumentIDs {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('?')
			args = append(args, id)
		}
		b.WriteByte(')')
	}
	if len(p.PageNumbers) > 0 {
		b.WriteString(" AND page_number IN (")
		for i, pn := range p.PageNumbers {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('?')
			args = append(args, pn)
		}
		b.WriteByte(')')
	}
	b.WriteString(" ORDER BY score DESC LIMIT ?")
	args = append(args, p.K)

	rows, err := c.ExecuteSimple(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: %w: query images: %v", apperr.ErrPersistentStore, err)
	}
	out := make([]ragtypes.Image, 0, len(rows))
	for _, r := range rows {
		img := imageFromRow(r)
		img.Score = float32(r.Float64("score"))
		out = append(out, img)
	}
	return out, nil
}

func (c *clickHouseStore) GetChunkByIndex(ctx context.Context, tenantID, documentID string, chunkIndex int) (ragtypes.Chunk, error) {
	q := fmt.Sprintf(`SELECT id, content, metadata FROM %s
		WHERE JSONExtractString(metadata,'tenant_id') = ? AND JSONExtractString(metadata,'document_id') = ?
		AND JSONExtractInt(metadata,'chunk_index') = ? LIMIT 1`, c.chunkTable)
	rows, err := c.ExecuteSimple(ctx, q, tenantID, documentID, chunkIndex)
	if err != nil {
		return ragtypes.Chunk{}, fmt.Errorf("vectorstore: %w: %v", apperr.ErrPersistentStore, err)
	}
	if len(rows) == 0 {
		return ragtypes.Chunk{}, fmt.Errorf("vectorstore: chunk at index %d: %w", chunkIndex, apperr.ErrNotFound)
	}
	return chunkFromRow(rows[0])
}

func (c *clickHouseStore) GetChunkByPage(ctx context.Context, tenantID, documentID string, pageNumber int) (ragtypes.Chunk, error) {
	q := fmt.Sprintf(`SELECT id, content, metadata FROM %s
		WHERE JSONExtractString(metadata,'tenant_id') = ? AND JSONExtractString(metadata,'document_id') = ?
		AND JSONExtractInt(metadata,'page_number') = ? LIMIT 1`, c.chunkTable)
	rows, err := c.ExecuteSimple(ctx, q, tenantID, documentID, pageNumber)
	if err != nil {
		return ragtypes.Chunk{}, fmt.Errorf("vectorstore: %w: %v", apperr.ErrPersistentStore, err)
	}
	if len(rows) == 0 {
		return ragtypes.Chunk{}, fmt.Errorf("vectorstore: chunk at page %d: %w", pageNumber, apperr.ErrNotFound)
	}
	return chunkFromRow(rows[0])
}

func (c *clickHouseStore) ListHeaders(ctx context.Context, tenantID string) ([]ragtypes.Document, error) {
	q := fmt.Sprintf(`SELECT tenant_id, document_id, source_filename, document_type, language, title, summary,
		total_pages, chunk_count, created_at FROM %s WHERE tenant_id = ? OR ? = '' ORDER BY created_at DESC`, c.headerTable)
	rows, err := c.ExecuteSimple(ctx, q, tenantID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: %w: %v", apperr.ErrPersistentStore, err)
	}
	out := make([]ragtypes.Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, documentFromRow(r))
	}
	return out, nil
}

func (c *clickHouseStore) GetHeader(ctx context.Context, tenantID, documentID string) (ragtypes.Document, bool, error) {
	q := fmt.Sprintf(`SELECT tenant_id, document_id, source_filename, document_type, language, title, summary,
		total_pages, chunk_count, created_at, summary_embedding FROM %s
		WHERE tenant_id = ? AND document_id = ? LIMIT 1`, c.headerTable)
	rows, err := c.ExecuteSimple(ctx, q, tenantID, documentID)
	if err != nil {
		return ragtypes.Document{}, false, fmt.Errorf("vectorstore: %w: %v", apperr.ErrPersistentStore, err)
	}
	if len(rows) == 0 {
		return ragtypes.Document{}, false, nil
	}
	d := documentFromRow(rows[0])
	d.SummaryEmbedding = rows[0].Float32Slice("summary_embedding")
	return d, true, nil
}

const imageMetadataColumns = "image_id, document_id, tenant_id, page_number, mime_type, width, height, description, degraded, created_at"

func (c *clickHouseStore) GetImage(ctx context.Context, imageID string) (ragtypes.Image, error) {
	q := fmt.Sprintf("SELECT %s, image_data FROM %s WHERE image_id = ? LIMIT 1", imageMetadataColumns, c.imageTable)
	rows, err := c.ExecuteSimple(ctx, q, imageID)
	if err != nil {
		return ragtypes.Image{}, fmt.Errorf("vectorstore: %w: get image: %v", apperr.ErrPersistentStore, err)
	}
	if len(rows) == 0 {
		return ragtypes.Image{}, fmt.Errorf("vectorstore: image %q: %w", imageID, apperr.ErrNotFound)
	}
	img := imageFromRow(rows[0])
	img.ImageData = []byte(rows[0].Str("image_data"))
	return img, nil
}

func (c *clickHouseStore) GetImageMetadata(ctx context.Context, imageID string) (ragtypes.Image, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE image_id = ? LIMIT 1", imageMetadataColumns, c.imageTable)
	rows, err := c.ExecuteSimple(ctx, q, imageID)
	if err != nil {
		return ragtypes.Image{}, fmt.Errorf("vectorstore: %w: get image metadata: %v", apperr.ErrPersistentStore, err)
	}
	if len(rows) == 0 {
		return ragtypes.Image{}, fmt.Errorf("vectorstore: image %q: %w", imageID, apperr.ErrNotFound)
	}
	return imageFromRow(rows[0]), nil
}

func (c *clickHouseStore) ListImagesForDocument(ctx context.Context, documentID string) ([]ragtypes.Image, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE document_id = ? ORDER BY page_number, image_id", imageMetadataColumns, c.imageTable)
	rows, err := c.ExecuteSimple(ctx, q, documentID)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: %w: list images: %v", apperr.ErrPersistentStore, err)
	}
	out := make([]ragtypes.Image, 0, len(rows))
	for _, r := range rows {
		out = append(out, imageFromRow(r))
	}
	return out, nil
}

func (c *clickHouseStore) DeleteChunksBySourceFilename(ctx context.Context, tenantID, sourceFilename string) (int, error) {
	cnt, err := c.countChunks(ctx,
		"JSONExtractString(metadata,'tenant_id') = ? AND JSONExtractString(metadata,'source_filename') = ?",
		tenantID, sourceFilename)
	if err != nil {
		return 0, err
	}
	del := fmt.Sprintf(`ALTER TABLE %s DELETE WHERE JSONExtractString(metadata,'tenant_id') = ?
		AND JSONExtractString(metadata,'source_filename') = ?`, c.chunkTable)
	if _, err := c.ExecuteSimple(ctx, del, tenantID, sourceFilename); err != nil {
		return 0, fmt.Errorf("vectorstore: %w: delete chunks by filename: %v", apperr.ErrPersistentStore, err)
	}
	return cnt, nil
}

func (c *clickHouseStore) DeleteChunksByDocumentID(ctx context.Context, tenantID, documentID string) (int, error) {
	cnt, err := c.countChunks(ctx,
		"JSONExtractString(metadata,'tenant_id') = ? AND JSONExtractString(metadata,'document_id') = ?",
		tenantID, documentID)
	if err != nil {
		return 0, err
	}
	del := fmt.Sprintf(`ALTER TABLE %s DELETE WHERE JSONExtractString(metadata,'tenant_id') = ?
		AND JSONExtractString(metadata,'document_id') = ?`, c.chunkTable)
	if _, err := c.ExecuteSimple(ctx, del, tenantID, documentID); err != nil {
		return 0, fmt.Errorf("vectorstore: %w: delete chunks by document id: %v", apperr.ErrPersistentStore, err)
	}
	return cnt, nil
}

func (c *clickHouseStore) countChunks(ctx context.Context, where string, args ...any) (int, error) {
	q := fmt.Sprintf("SELECT count() AS n FROM %s WHERE %s", c.chunkTable, where)
	rows, err := c.ExecuteSimple(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("vectorstore: %w: count chunks: %v", apperr.ErrPersistentStore, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Int("n"), nil
}

func (c *clickHouseStore) DeleteHeader(ctx context.Context, tenantID, documentID string) error {
	del := fmt.Sprintf("ALTER TABLE %s DELETE WHERE tenant_id = ? AND document_id = ?", c.headerTable)
	if _, err := c.ExecuteSimple(ctx, del, tenantID, documentID); err != nil {
		return fmt.Errorf("vectorstore: %w: delete header: %v", apperr.ErrPersistentStore, err)
	}
	return nil
}

func (c *clickHouseStore) DeleteImagesByDocumentID(ctx context.Context, tenantID, documentID string) (int, error) {
	q := fmt.Sprintf("SELECT count() AS n FROM %s WHERE tenant_id = ? AND document_id = ?", c.imageTable)
	rows, err := c.ExecuteSimple(ctx, q, tenantID, documentID)
	if err != nil {
		return 0, fmt.Errorf("vectorstore: %w: count images: %v", apperr.ErrPersistentStore, err)
	}
	cnt := 0
	if len(rows) > 0 {
		cnt = rows[0].Int("n")
	}
	del := fmt.Sprintf("ALTER TABLE %s DELETE WHERE tenant_id = ? AND document_id = ?", c.imageTable)
	if _, err := c.ExecuteSimple(ctx, del, tenantID, documentID); err != nil {
		return 0, fmt.Errorf("vectorstore: %w: delete images: %v", apperr.ErrPersistentStore, err)
	}
	return cnt, nil
}

func chunkFromRow(r Row) (ragtypes.Chunk, error) {
	var meta ragtypes.ChunkMetadata
	if raw := r.Str("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return ragtypes.Chunk{}, fmt.Errorf("vectorstore: unmarshal chunk metadata: %w", err)
		}
	}
	return ragtypes.Chunk{
		ChunkID:   r.Str("id"),
		Content:   r.Str("content"),
		Embedding: r.Float32Slice("embedding"),
		Metadata:  meta,
	}, nil
}

func documentFromRow(r Row) ragtypes.Document {
	return ragtypes.Document{
		TenantID:       r.Str("tenant_id"),
		DocumentID:     r.Str("document_id"),
		SourceFilename: r.Str("source_filename"),
		DocumentType:   ragtypes.DocumentType(r.Str("document_type")),
		Language:       r.Str("language"),
		Title:          r.Str("title"),
		Summary:        r.Str("summary"),
		TotalPages:     r.Int("total_pages"),
		ChunkCount:     r.Int("chunk_count"),
		CreatedAt:      r.Time("created_at"),
	}
}

func imageFromRow(r Row) ragtypes.Image {
	return ragtypes.Image{
		ImageID:     r.Str("image_id"),
		DocumentID:  r.Str("document_id"),
		TenantID:    r.Str("tenant_id"),
		PageNumber:  r.Int("page_number"),
		MimeType:    r.Str("mime_type"),
		Width:       r.Int("width"),
		Height:      r.Int("height"),
		Description: r.Str("description"),
		Degraded:    r.Int("degraded") != 0,
		CreatedAt:   r.Time("created_at"),
	}
}
