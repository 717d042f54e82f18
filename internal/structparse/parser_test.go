package structparse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.go")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseStruct(t *testing.T) {
	src := `package models

type Item struct {
	ID         uint64
	Name, Desc string
	Tags       []string
	Meta       map[string]any ` + "`json:\"meta\"`" + `
}
`
	path := writeSource(t, src)

	info, err := ParseStruct(path, "Item")
	require.NoError(t, err)

	assert.Equal(t, "Item", info.Name)
	assert.Equal(t, "models", info.PackageName)

	// 字段按声明顺序，同一行多个名字按书写顺序展开
	assert.Equal(t, []string{"ID", "Name", "Desc", "Tags", "Meta"}, info.FieldNames())

	assert.Equal(t, "uint64", info.Fields[0].Type)
	assert.Equal(t, "string", info.Fields[1].Type)
	assert.Equal(t, "[]string", info.Fields[3].Type)
	assert.Equal(t, "map[string]any", info.Fields[4].Type)
	assert.Equal(t, "`json:\"meta\"`", info.Fields[4].Tag)
}

func TestParseStructEmbedded(t *testing.T) {
	src := `package models

import "sync"

type Base struct {
	ID uint64
}

type Record struct {
	Base
	*sync.Mutex
	Name string
}
`
	path := writeSource(t, src)

	info, err := ParseStruct(path, "Record")
	require.NoError(t, err)

	// 嵌入字段使用 Go 的隐式字段名
	require.Len(t, info.Fields, 3)
	assert.Equal(t, "Base", info.Fields[0].Name)
	assert.True(t, info.Fields[0].Embedded)
	assert.Equal(t, "Mutex", info.Fields[1].Name)
	assert.True(t, info.Fields[1].Embedded)
	assert.Equal(t, "Name", info.Fields[2].Name)
	assert.False(t, info.Fields[2].Embedded)
}

func TestParseStructNotFound(t *testing.T) {
	path := writeSource(t, "package models\n\ntype A struct{ X int }\n")

	_, err := ParseStruct(path, "Missing")
	assert.Error(t, err)

	// 同名但不是结构体
	path2 := writeSource(t, "package models\n\ntype B = int\n")
	_, err = ParseStruct(path2, "B")
	assert.Error(t, err)
}

func TestParseStructEmpty(t *testing.T) {
	path := writeSource(t, "package models\n\ntype Empty struct{}\n")

	info, err := ParseStruct(path, "Empty")
	require.NoError(t, err)
	assert.Empty(t, info.Fields)
}
