package book

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// LoadStats 汇总一次加载。
type LoadStats struct {
	Files   int
	Rows    int
	Skipped int
	Records int
	Boards  int
}

const parquetBatch = 1024

// Load 并行读取数据集文件（.json / .json.zst / .zst / .parquet），按参数顺序拼接后建索引。
// 不合法的行跳过并计数；任一文件打不开或解析失败则整体失败。
func Load(ctx context.Context, log zerolog.Logger, workers int, paths ...string) (*Index, LoadStats, error) {
	start := time.Now()
	if workers <= 0 {
		workers = 1
	}
	results := make([][]Row, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := ReadRows(path)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			log.Debug().Str("file", path).Int("rows", len(rows)).Msg("dataset file read")
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, LoadStats{}, err
	}

	stats := LoadStats{Files: len(paths)}
	var records []Record
	for i, rows := range results {
		skipped := 0
		for _, row := range rows {
			rec, ok := row.Record()
			if !ok {
				skipped++
				continue
			}
			records = append(records, rec)
		}
		if skipped > 0 {
			log.Warn().Str("file", paths[i]).Int("skipped", skipped).Msg("invalid dataset rows skipped")
		}
		stats.Rows += len(rows)
		stats.Skipped += skipped
	}

	ix := Build(records)
	stats.Records = ix.Records()
	stats.Boards = ix.Len()
	log.Info().
		Int("files", stats.Files).
		Int("records", stats.Records).
		Int("boards", stats.Boards).
		Int("skipped", stats.Skipped).
		Dur("took", time.Since(start)).
		Msg("frequency index built")
	return ix, stats, nil
}

// ReadRows 按扩展名读取单个数据集文件。
func ReadRows(path string) ([]Row, error) {
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".parquet"):
		return readParquet(path, 4)
	case strings.HasSuffix(name, ".zst"):
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		data, err := io.ReadAll(dec)
		if err != nil {
			return nil, err
		}
		return decodeJSON(data)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return decodeJSON(data)
	}
}

// decodeJSON 解析行数组；不是合法 UTF-8 时按 GB18030 转码。
func decodeJSON(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), simplifiedchinese.GB18030.NewDecoder()))
		if err != nil {
			return nil, fmt.Errorf("gb18030 decode: %w", err)
		}
		data = decoded
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func readParquet(path string, parallel int64) ([]Row, error) {
	absPath := path
	if !filepath.IsAbs(path) {
		if resolved, err := filepath.Abs(path); err == nil {
			absPath = resolved
		}
	}
	fileReader, err := local.NewLocalFileReader(absPath)
	if err != nil {
		return nil, err
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(Row), parallel)
	if err != nil {
		return nil, err
	}
	defer parquetReader.ReadStop()

	num := int(parquetReader.GetNumRows())
	rows := make([]Row, 0, num)
	batchSize := parquetBatch
	for offset := 0; offset < num; offset += batchSize {
		if remain := num - offset; remain < batchSize {
			batchSize = remain
		}
		batch := make([]Row, batchSize)
		if err := parquetReader.Read(&batch); err != nil {
			return nil, err
		}
		rows = append(rows, batch...)
	}
	return rows, nil
}
