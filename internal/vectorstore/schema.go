package vectorstore

import "fmt"

// Table DDL for the chunk, header, and image tables. MergeTree has no true
// UPSERT or row-level uniqueness constraint, so the adapter's upsert paths
// are delete-then-insert, which is also what the header-replacement
// semantics require.
//
// Embedding columns are Array(Float32) — the concrete encoding of the
// "REAL_VECTOR" type named in the store-agnostic contract — compared with
// ClickHouse's built-in cosineDistance() function.

func chunkTableDDL(table string, dimension int) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id String,
	content String,
	metadata String,
	embedding Array(Float32)
) ENGINE = MergeTree()
ORDER BY id`, table)
}

func headerTableDDL(table string, dimension int) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	tenant_id String,
	document_id String,
	source_filename String,
	document_type String,
	language String,
	title String,
	summary String,
	total_pages Int32,
	chunk_count Int32,
	created_at DateTime64(3),
	summary_embedding Array(Float32)
) ENGINE = MergeTree()
ORDER BY (tenant_id, document_id)`, table)
}

func imageTableDDL(table string, dimension int) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	image_id String,
	document_id String,
	tenant_id String,
	page_number Int32,
	mime_type String,
	width Int32,
	height Int32,
	description String,
	description_embedding Array(Float32),
	image_data String,
	degraded UInt8,
	created_at DateTime64(3)
) ENGINE = MergeTree()
ORDER BY image_id`, table)
}
