package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pulsebook/storefront/internal/database"
	"github.com/pulsebook/storefront/internal/model"
)

// PostgresPurchaseRepo はPostgreSQLを使用した購入台帳リポジトリ。
type PostgresPurchaseRepo struct {
	db *sql.DB
}

// NewPostgresPurchaseRepo はPostgresPurchaseRepoを生成する。
func NewPostgresPurchaseRepo(db *sql.DB) *PostgresPurchaseRepo {
	return &PostgresPurchaseRepo{db: db}
}

// Insert は購入を記録する。
// 重複判定は ux_purchases_user_book_type 一意索引に任せ、事前のSELECTは行わない。
// ON CONFLICT DO NOTHING で行が返らなければ既存の購入がある。
func (r *PostgresPurchaseRepo) Insert(ctx context.Context, p *model.Purchase) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO purchases (user_email, book_id, purchase_type, price, payment_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_email, book_id, purchase_type) DO NOTHING
		 RETURNING id, purchased_at`,
		p.UserEmail, p.BookID, p.PurchaseType, p.Price, nullString(p.PaymentID),
	).Scan(&p.ID, &p.PurchasedAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrDuplicate
	case database.IsForeignKeyViolation(err):
		return ErrReferenceNotFound
	case database.IsUniqueViolation(err):
		return ErrDuplicate
	case err != nil:
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

// ListByEmail はユーザーの購入履歴を書籍情報付きで新しい順に返す。
func (r *PostgresPurchaseRepo) ListByEmail(ctx context.Context, email string) ([]*model.PurchaseWithBook, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.user_email, p.book_id, p.purchase_type, p.price, p.payment_id, p.purchased_at,
		        b.title, b.author, b.cover, b.genre
		 FROM purchases p
		 JOIN books b ON p.book_id = b.id
		 WHERE p.user_email = $1
		 ORDER BY p.purchased_at DESC, p.id DESC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	purchases := []*model.PurchaseWithBook{}
	for rows.Next() {
		p := &model.PurchaseWithBook{}
		var paymentID sql.NullString
		if err := rows.Scan(
			&p.ID, &p.UserEmail, &p.BookID, &p.PurchaseType, &p.Price, &paymentID, &p.PurchasedAt,
			&p.BookTitle, &p.BookAuthor, &p.BookCover, &p.BookGenre,
		); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		p.PaymentID = nullStringValue(paymentID)
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchases: %w", err)
	}

	return purchases, nil
}

// Count は購入件数を返す。
func (r *PostgresPurchaseRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchases`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count purchases: %w", err)
	}
	return n, nil
}

// TotalRevenue は全購入の合計金額を返す。
func (r *PostgresPurchaseRepo) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(price), 0) FROM purchases`).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return total, nil
}

// SalesByDay は直近days日間の日別売上を返す。
func (r *PostgresPurchaseRepo) SalesByDay(ctx context.Context, days int) ([]model.SalesBucket, error) {
	return r.salesBuckets(ctx,
		`SELECT DATE(purchased_at) AS bucket, COUNT(*), COALESCE(SUM(price), 0)
		 FROM purchases
		 WHERE purchased_at >= CURRENT_DATE - make_interval(days => $1)
		 GROUP BY bucket
		 ORDER BY bucket ASC`,
		days,
	)
}

// SalesByWeek は直近weeks週間の週別売上を返す。週の開始は月曜日。
func (r *PostgresPurchaseRepo) SalesByWeek(ctx context.Context, weeks int) ([]model.SalesBucket, error) {
	return r.salesBuckets(ctx,
		`SELECT DATE_TRUNC('week', purchased_at) AS bucket, COUNT(*), COALESCE(SUM(price), 0)
		 FROM purchases
		 WHERE purchased_at >= CURRENT_DATE - make_interval(weeks => $1)
		 GROUP BY bucket
		 ORDER BY bucket ASC`,
		weeks,
	)
}

func (r *PostgresPurchaseRepo) salesBuckets(ctx context.Context, query string, span int) ([]model.SalesBucket, error) {
	rows, err := r.db.QueryContext(ctx, query, span)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	defer rows.Close()

	buckets := []model.SalesBucket{}
	for rows.Next() {
		var b model.SalesBucket
		if err := rows.Scan(&b.Start, &b.Count, &b.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan sales bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales buckets: %w", err)
	}
	return buckets, nil
}

// compile-time interface check
var _ PurchaseRepository = (*PostgresPurchaseRepo)(nil)
