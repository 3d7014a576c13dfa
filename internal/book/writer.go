package book

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// WriteJSON 以数组形式写出，和加载端格式一致。
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(rows)
}

func WriteZstdJSON(w io.Writer, rows []Row) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := WriteJSON(zw, rows); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func WriteParquet(path string, rows []Row, parallel int64) error {
	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(Row), parallel)
	if err != nil {
		fileWriter.Close()
		return err
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := parquetWriter.Write(row); err != nil {
			fileWriter.Close()
			return err
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		fileWriter.Close()
		return err
	}
	return fileWriter.Close()
}

// WriteFile 按扩展名选择格式，与 ReadRows 对应。
func WriteFile(path string, rows []Row) error {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".parquet") {
		return WriteParquet(path, rows, 4)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if strings.HasSuffix(name, ".zst") {
		err = WriteZstdJSON(f, rows)
	} else {
		err = WriteJSON(f, rows)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
