package common

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
)

// ParseJSONBytes 解析遠端回應，允許未知欄位
func ParseJSONBytes(data []byte, v any) error {
	return decodeJSON(bytes.NewReader(data), v, false)
}

// ReadJSONFile 讀取 JSON 檔案（禁止未知欄位）
func ReadJSONFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := decodeJSON(f, v, true); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// MarshalJSON 快取與日誌共用的編碼
func MarshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

func decodeJSON(r io.Reader, v any, disallowUnknown bool) error {
	dec := json.NewDecoder(r)
	if disallowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return err
	}

	// 一份輸入只能有一個 JSON 值
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}
