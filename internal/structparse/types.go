package structparse

// FieldInfo 表示结构体字段信息
// Type 只作为不透明字符串保留，生成器不检查字段类型
type FieldInfo struct {
	Name     string // 字段名（嵌入字段为隐式字段名）
	Type     string // 字段类型的文本形式
	Tag      string // 字段标签
	Embedded bool   // 是否为嵌入字段
}

// StructInfo 表示结构体信息
// 字段顺序与声明顺序一致
type StructInfo struct {
	Name        string      // 结构体名称
	PackageName string      // 包名
	FilePath    string      // 结构体所在文件路径
	Fields      []FieldInfo // 字段列表
}

// FieldNames 按声明顺序返回全部字段名
func (s *StructInfo) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}
