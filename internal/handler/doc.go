// Package handler 按业务域划分的 HTTP Handler 位于各子包中
//
// 本文件仅供 swag init --dir ./internal/handler 识别该目录
package handler
