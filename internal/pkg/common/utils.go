package common

import (
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RequestIDOrNew 回傳既有請求 ID，沒有時生成新的
func RequestIDOrNew(requestID string) string {
	if requestID != "" {
		return requestID
	}
	return GenerateUUID()
}
