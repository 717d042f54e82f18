package structparse

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// ParseStruct 解析指定文件中的结构体，返回与声明顺序一致的字段元数据
func ParseStruct(filename, structName string) (*StructInfo, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}

	structInfo := &StructInfo{
		Name:        structName,
		PackageName: node.Name.Name,
		FilePath:    filename,
	}

	// 查找目标结构体
	var targetStruct *ast.StructType
	ast.Inspect(node, func(n ast.Node) bool {
		genDecl, ok := n.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			return true
		}
		for _, spec := range genDecl.Specs {
			if typeSpec, ok := spec.(*ast.TypeSpec); ok && typeSpec.Name.Name == structName {
				if structType, ok := typeSpec.Type.(*ast.StructType); ok {
					targetStruct = structType
					return false
				}
			}
		}
		return true
	})

	if targetStruct == nil {
		return nil, fmt.Errorf("未找到结构体 %s", structName)
	}

	structInfo.Fields = parseFields(targetStruct.Fields)
	return structInfo, nil
}

// parseFields 按声明顺序提取字段
// 嵌入字段使用 Go 的隐式字段名（类型基本名），不做展开
func parseFields(fieldList *ast.FieldList) []FieldInfo {
	if fieldList == nil {
		return nil
	}

	var fields []FieldInfo
	for _, field := range fieldList.List {
		fieldType := typeString(field.Type)

		var fieldTag string
		if field.Tag != nil {
			fieldTag = field.Tag.Value
		}

		if len(field.Names) == 0 {
			// 嵌入字段
			fields = append(fields, FieldInfo{
				Name:     embeddedFieldName(fieldType),
				Type:     fieldType,
				Tag:      fieldTag,
				Embedded: true,
			})
			continue
		}

		for _, name := range field.Names {
			fields = append(fields, FieldInfo{
				Name: name.Name,
				Type: fieldType,
				Tag:  fieldTag,
			})
		}
	}

	return fields
}

// embeddedFieldName 求嵌入字段的隐式字段名
// *pkg.Type -> Type
func embeddedFieldName(typeStr string) string {
	s := strings.TrimPrefix(typeStr, "*")
	if idx := strings.LastIndex(s, "."); idx >= 0 {
		s = s[idx+1:]
	}
	return s
}

// typeString 将类型表达式还原为文本
func typeString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return "*" + typeString(e.X)
	case *ast.SelectorExpr:
		return typeString(e.X) + "." + e.Sel.Name
	case *ast.ArrayType:
		if e.Len == nil {
			return "[]" + typeString(e.Elt)
		}
		return "[" + typeString(e.Len) + "]" + typeString(e.Elt)
	case *ast.MapType:
		return "map[" + typeString(e.Key) + "]" + typeString(e.Value)
	case *ast.ChanType:
		switch e.Dir {
		case ast.RECV:
			return "<-chan " + typeString(e.Value)
		case ast.SEND:
			return "chan<- " + typeString(e.Value)
		default:
			return "chan " + typeString(e.Value)
		}
	case *ast.IndexExpr:
		return typeString(e.X) + "[" + typeString(e.Index) + "]"
	case *ast.BasicLit:
		return e.Value
	case *ast.InterfaceType:
		return "interface{}"
	case *ast.StructType:
		return "struct{}"
	case *ast.FuncType:
		return "func(...)"
	default:
		return ""
	}
}
