package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/pulsebook/storefront/internal/database"
	"github.com/pulsebook/storefront/internal/model"
)

const bookColumns = `id, title, author, genre, rating, price, discount_price, cover, description,
	badges, ebook_text, ebook_price, ebook_discount_price, is_adult_content, created_at, updated_at`

// PostgresBookRepo はPostgreSQLを使用した書籍リポジトリ。
type PostgresBookRepo struct {
	db *sql.DB
}

// NewPostgresBookRepo はPostgresBookRepoを生成する。
func NewPostgresBookRepo(db *sql.DB) *PostgresBookRepo {
	return &PostgresBookRepo{db: db}
}

func scanBook(s rowScanner) (*model.Book, error) {
	b := &model.Book{}
	var badges pq.StringArray
	var ebookText sql.NullString
	err := s.Scan(
		&b.ID, &b.Title, &b.Author, &b.Genre, &b.Rating, &b.Price, &b.DiscountPrice,
		&b.Cover, &b.Description, &badges, &ebookText, &b.EbookPrice, &b.EbookDiscountPrice,
		&b.IsAdultContent, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Badges = []string(badges)
	if b.Badges == nil {
		b.Badges = []string{}
	}
	b.EbookText = stringPtr(ebookText)
	b.Formats = []model.BookFormat{}
	return b, nil
}

// FindByID は指定IDの書籍をフォーマット付きで取得する。見つからない場合はnilを返す。
func (r *PostgresBookRepo) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	book, err := scanBook(r.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}

	if err := r.loadFormats(ctx, []*model.Book{book}); err != nil {
		return nil, err
	}
	return book, nil
}

// List は全書籍をフォーマット付きで新しい順に返す。
// フォーマットは書籍ごとではなく1回のクエリでまとめて取得する。
func (r *PostgresBookRepo) List(ctx context.Context) ([]*model.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []*model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	if err := r.loadFormats(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *PostgresBookRepo) loadFormats(ctx context.Context, books []*model.Book) error {
	if len(books) == 0 {
		return nil
	}

	byID := make(map[int64]*model.Book, len(books))
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT book_id, format, file_url FROM book_formats WHERE book_id = ANY($1) ORDER BY id`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to load book formats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID int64
		var f model.BookFormat
		if err := rows.Scan(&bookID, &f.Format, &f.FileURL); err != nil {
			return fmt.Errorf("failed to scan book format: %w", err)
		}
		if b, ok := byID[bookID]; ok {
			b.Formats = append(b.Formats, f)
		}
	}
	return rows.Err()
}

// Create は書籍とフォーマットを同一トランザクションで作成する。
func (r *PostgresBookRepo) Create(ctx context.Context, book *model.Book) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO books (title, author, genre, rating, price, discount_price, cover, description,
		                    badges, ebook_text, ebook_price, ebook_discount_price, is_adult_content)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		book.Title, book.Author, book.Genre, book.Rating, book.Price, book.DiscountPrice,
		book.Cover, book.Description, badgesArray(book.Badges), nullStringPtr(book.EbookText),
		book.EbookPrice, book.EbookDiscountPrice, book.IsAdultContent,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	if err := insertFormats(ctx, tx, book.ID, book.Formats); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update は書籍を更新し、フォーマットを削除してから再登録する。
// 書籍の更新とフォーマットの置き換えは同一トランザクションで行う。
func (r *PostgresBookRepo) Update(ctx context.Context, book *model.Book) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE books
		 SET title = $1, author = $2, genre = $3, rating = $4, price = $5, discount_price = $6,
		     cover = $7, description = $8, badges = $9, ebook_text = $10,
		     ebook_price = $11, ebook_discount_price = $12, is_adult_content = $13, updated_at = NOW()
		 WHERE id = $14`,
		book.Title, book.Author, book.Genre, book.Rating, book.Price, book.DiscountPrice,
		book.Cover, book.Description, badgesArray(book.Badges), nullStringPtr(book.EbookText),
		book.EbookPrice, book.EbookDiscountPrice, book.IsAdultContent, book.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_formats WHERE book_id = $1`, book.ID); err != nil {
		return fmt.Errorf("failed to delete book formats: %w", err)
	}
	if err := insertFormats(ctx, tx, book.ID, book.Formats); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete は書籍を削除する。
func (r *PostgresBookRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if database.IsForeignKeyViolation(err) {
		return ErrReferenced
	}
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return requireAffected(result)
}

// Count は書籍数を返す。
func (r *PostgresBookRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return n, nil
}

// insertFormats はフォーマットを1文でまとめて登録する。
func insertFormats(ctx context.Context, tx *sql.Tx, bookID int64, formats []model.BookFormat) error {
	if len(formats) == 0 {
		return nil
	}

	names := make([]string, len(formats))
	urls := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Format
		urls[i] = f.FileURL
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO book_formats (book_id, format, file_url)
		 SELECT $1, f.format, f.file_url
		 FROM unnest($2::text[], $3::text[]) AS f(format, file_url)`,
		bookID, pq.Array(names), pq.Array(urls),
	)
	if err != nil {
		return fmt.Errorf("failed to insert book formats: %w", err)
	}
	return nil
}

// badgesArray はnilスライスを空配列として書き込むためのpq.StringArrayを返す。
func badgesArray(badges []string) pq.StringArray {
	if badges == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(badges)
}

// compile-time interface check
var _ BookRepository = (*PostgresBookRepo)(nil)
