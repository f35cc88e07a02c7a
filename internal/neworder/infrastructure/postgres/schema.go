package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TPC-C derived wholesale schema. The transaction core consumes this purely
// as a contract; loadgen prepare and the integration tests create it.
const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS warehouse (
    w_id        INTEGER PRIMARY KEY,
    w_name      VARCHAR(10) NOT NULL,
    w_tax       NUMERIC(4,4) NOT NULL,
    w_ytd       NUMERIC(12,2) NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS district (
    d_id        INTEGER NOT NULL,
    d_w_id      INTEGER NOT NULL REFERENCES warehouse(w_id),
    d_name      VARCHAR(10) NOT NULL,
    d_tax       NUMERIC(4,4) NOT NULL,
    d_ytd       NUMERIC(12,2) NOT NULL DEFAULT 0,
    d_next_o_id INTEGER NOT NULL,
    PRIMARY KEY (d_w_id, d_id)
);

CREATE TABLE IF NOT EXISTS customer (
    c_id        INTEGER NOT NULL,
    c_d_id      INTEGER NOT NULL,
    c_w_id      INTEGER NOT NULL,
    c_first     VARCHAR(16) NOT NULL,
    c_last      VARCHAR(16) NOT NULL,
    c_credit    CHAR(2) NOT NULL,
    c_discount  NUMERIC(4,4) NOT NULL,
    c_balance   NUMERIC(12,2) NOT NULL DEFAULT 0,
    PRIMARY KEY (c_w_id, c_d_id, c_id),
    FOREIGN KEY (c_w_id, c_d_id) REFERENCES district(d_w_id, d_id)
);

CREATE TABLE IF NOT EXISTS item (
    i_id        INTEGER PRIMARY KEY,
    i_name      VARCHAR(24) NOT NULL,
    i_price     NUMERIC(5,2) NOT NULL,
    i_data      VARCHAR(50) NOT NULL
);

CREATE TABLE IF NOT EXISTS stock (
    s_i_id      INTEGER NOT NULL REFERENCES item(i_id),
    s_w_id      INTEGER NOT NULL REFERENCES warehouse(w_id),
    s_quantity  INTEGER NOT NULL,
    s_dist_01   CHAR(24) NOT NULL,
    s_dist_02   CHAR(24) NOT NULL,
    s_dist_03   CHAR(24) NOT NULL,
    s_dist_04   CHAR(24) NOT NULL,
    s_dist_05   CHAR(24) NOT NULL,
    s_dist_06   CHAR(24) NOT NULL,
    s_dist_07   CHAR(24) NOT NULL,
    s_dist_08   CHAR(24) NOT NULL,
    s_dist_09   CHAR(24) NOT NULL,
    s_dist_10   CHAR(24) NOT NULL,
    s_data      VARCHAR(50) NOT NULL,
    PRIMARY KEY (s_w_id, s_i_id)
);

CREATE TABLE IF NOT EXISTS orders (
    o_id        INTEGER NOT NULL,
    o_d_id      INTEGER NOT NULL,
    o_w_id      INTEGER NOT NULL,
    o_c_id      INTEGER NOT NULL,
    o_entry_d   TIMESTAMPTZ NOT NULL,
    o_carrier_id INTEGER,
    o_ol_cnt    INTEGER NOT NULL,
    o_all_local INTEGER NOT NULL,
    PRIMARY KEY (o_w_id, o_d_id, o_id),
    FOREIGN KEY (o_w_id, o_d_id, o_c_id) REFERENCES customer(c_w_id, c_d_id, c_id)
);

CREATE TABLE IF NOT EXISTS new_orders (
    no_o_id     INTEGER NOT NULL,
    no_d_id     INTEGER NOT NULL,
    no_w_id     INTEGER NOT NULL,
    PRIMARY KEY (no_w_id, no_d_id, no_o_id),
    FOREIGN KEY (no_w_id, no_d_id, no_o_id) REFERENCES orders(o_w_id, o_d_id, o_id)
);

CREATE TABLE IF NOT EXISTS order_line (
    ol_o_id         INTEGER NOT NULL,
    ol_d_id         INTEGER NOT NULL,
    ol_w_id         INTEGER NOT NULL,
    ol_number       INTEGER NOT NULL,
    ol_i_id         INTEGER NOT NULL REFERENCES item(i_id),
    ol_supply_w_id  INTEGER NOT NULL,
    ol_delivery_d   TIMESTAMPTZ,
    ol_quantity     INTEGER NOT NULL,
    ol_amount       NUMERIC(6,2) NOT NULL,
    ol_dist_info    CHAR(24) NOT NULL,
    PRIMARY KEY (ol_w_id, ol_d_id, ol_o_id, ol_number),
    FOREIGN KEY (ol_w_id, ol_d_id, ol_o_id) REFERENCES orders(o_w_id, o_d_id, o_id)
);

CREATE TABLE IF NOT EXISTS outbox (
    id             BIGSERIAL PRIMARY KEY,
    aggregate_type TEXT NOT NULL,
    aggregate_id   TEXT NOT NULL,
    type           TEXT NOT NULL,
    payload        JSONB NOT NULL,
    headers        JSONB,
    traceparent    TEXT,
    status         TEXT NOT NULL DEFAULT 'pending',
    relay_id       TEXT,
    lease_until    TIMESTAMPTZ,
    retry_count    INTEGER NOT NULL DEFAULT 0,
    last_error     TEXT,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_customer_name ON customer(c_w_id, c_d_id, c_last, c_first);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(status, id) WHERE status = 'pending';
`

const dropSchemaSQL = `
DROP TABLE IF EXISTS outbox CASCADE;
DROP TABLE IF EXISTS order_line CASCADE;
DROP TABLE IF EXISTS new_orders CASCADE;
DROP TABLE IF EXISTS orders CASCADE;
DROP TABLE IF EXISTS stock CASCADE;
DROP TABLE IF EXISTS item CASCADE;
DROP TABLE IF EXISTS customer CASCADE;
DROP TABLE IF EXISTS district CASCADE;
DROP TABLE IF EXISTS warehouse CASCADE;
`

// CreateSchema creates the wholesale tables and the outbox.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema removes everything CreateSchema made.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, dropSchemaSQL)
	return err
}
