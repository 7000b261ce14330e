package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const parallelism = 4

var ErrInvalidDestination = errors.New("export destination must be a file path or s3://bucket/key")

// OrderRow is one exported line item denormalized with its order.
type OrderRow struct {
	OrderID        string  `parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	AccountID      string  `parquet:"name=account_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	PickupCode     string  `parquet:"name=pickup_code, type=BYTE_ARRAY, convertedtype=UTF8"`
	Channel        string  `parquet:"name=channel, type=BYTE_ARRAY, convertedtype=UTF8"`
	Status         string  `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
	PaymentStatus  string  `parquet:"name=payment_status, type=BYTE_ARRAY, convertedtype=UTF8"`
	PlacedAt       int64   `parquet:"name=placed_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	OrderTotal     float64 `parquet:"name=order_total, type=DOUBLE"`
	Currency       string  `parquet:"name=currency, type=BYTE_ARRAY, convertedtype=UTF8"`
	LineNumber     int32   `parquet:"name=line_number, type=INT32"`
	ProductID      string  `parquet:"name=product_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Quantity       int32   `parquet:"name=quantity, type=INT32"`
	UnitPrice      float64 `parquet:"name=unit_price, type=DOUBLE"`
	LineSubtotal   float64 `parquet:"name=line_subtotal, type=DOUBLE"`
	PrepActualSecs int64   `parquet:"name=prep_time_actual_seconds, type=INT64"`
}

// OrderSource reads the orders of one account.
type OrderSource interface {
	ListOrders(ctx context.Context, accountID uuid.UUID, filter order.ListFilter) ([]order.Order, error)
	ListLineItems(ctx context.Context, accountID, orderID uuid.UUID) ([]order.LineItem, error)
}

// Uploader is the subset of the S3 client used for uploads.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Exporter struct {
	orders   OrderSource
	uploader Uploader
}

// NewExporter builds an exporter. uploader may be nil when only local paths are used.
func NewExporter(orders OrderSource, uploader Uploader) *Exporter {
	return &Exporter{orders: orders, uploader: uploader}
}

func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// ParseDestination splits an s3://bucket/key URL. ok is false for plain paths.
func ParseDestination(dest string) (bucket, key string, ok bool, err error) {
	if !strings.HasPrefix(dest, "s3://") {
		if strings.TrimSpace(dest) == "" {
			return "", "", false, ErrInvalidDestination
		}
		return "", "", false, nil
	}
	bucket, key, found := strings.Cut(strings.TrimPrefix(dest, "s3://"), "/")
	if !found || bucket == "" || key == "" {
		return "", "", false, ErrInvalidDestination
	}
	return bucket, key, true, nil
}

// Rows flattens orders into one row per line item.
func Rows(orders []order.Order) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		var prep int64
		if o.PrepTimeActualSeconds != nil {
			prep = int64(*o.PrepTimeActualSeconds)
		}
		for _, item := range o.LineItems {
			rows = append(rows, OrderRow{
				OrderID:        o.ID.String(),
				AccountID:      o.AccountID.String(),
				PickupCode:     o.PickupCode,
				Channel:        string(o.Channel),
				Status:         string(o.Status),
				PaymentStatus:  string(o.PaymentStatus),
				PlacedAt:       o.PlacedAt.UnixMilli(),
				OrderTotal:     o.TotalAmount,
				Currency:       o.Currency,
				LineNumber:     int32(item.LineNumber),
				ProductID:      item.ProductID.String(),
				Quantity:       int32(item.Quantity),
				UnitPrice:      item.UnitPrice,
				LineSubtotal:   item.LineSubtotal,
				PrepActualSecs: prep,
			})
		}
	}
	return rows
}

func writeRows(fw source.ParquetFile, rows []OrderRow) error {
	pw, err := writer.NewParquetWriter(fw, new(OrderRow), parallelism)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// WriteParquet encodes rows as a parquet file into w.
func WriteParquet(w io.Writer, rows []OrderRow) error {
	return writeRows(writerfile.NewWriterFile(w), rows)
}

// WriteParquetFile encodes rows into a parquet file at path.
func WriteParquetFile(path string, rows []OrderRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeRows(fw, rows); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

func (e *Exporter) loadOrders(ctx context.Context, accountID uuid.UUID) ([]order.Order, error) {
	orders, err := e.orders.ListOrders(ctx, accountID, order.ListFilter{})
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if len(orders[i].LineItems) > 0 {
			continue
		}
		items, err := e.orders.ListLineItems(ctx, accountID, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].LineItems = items
	}
	return orders, nil
}

// ExportOrders writes every line item of the account to dest and returns the row count.
func (e *Exporter) ExportOrders(ctx context.Context, accountID uuid.UUID, dest string) (int, error) {
	bucket, key, toS3, err := ParseDestination(dest)
	if err != nil {
		return 0, err
	}
	if toS3 && e.uploader == nil {
		return 0, fmt.Errorf("export: no S3 client configured for %s", dest)
	}

	orders, err := e.loadOrders(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("export: failed to load orders: %w", err)
	}
	rows := Rows(orders)

	if !toS3 {
		if err := WriteParquetFile(dest, rows); err != nil {
			return 0, fmt.Errorf("export: %w", err)
		}
		log.Info().Stringer("account_id", accountID).Str("path", dest).Int("rows", len(rows)).Msg("export: orders written")
		return len(rows), nil
	}

	var buf bytes.Buffer
	if err := WriteParquet(&buf, rows); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	_, err = e.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/vnd.apache.parquet"),
	})
	if err != nil {
		return 0, fmt.Errorf("export: unable to upload to s3://%s/%s: %w", bucket, key, err)
	}

	log.Info().Stringer("account_id", accountID).Str("bucket", bucket).Str("key", key).Int("rows", len(rows)).Msg("export: orders uploaded")
	return len(rows), nil
}
