package example

// 示例 1: 排除元数据字段，自定义方法名
// @SubsetEq(ignore(UpdatedAt, CacheToken), method = "EqIgnoringMeta")
type Item struct {
	ID         uint64
	Name       string
	UpdatedAt  int64
	CacheToken string
}

// 示例 2: 空 ignore 列表 + 默认方法名，比较全部字段
// @SubsetEq(ignore())
type Point struct {
	X int
	Y int
}

// 示例 3: 参数顺序与示例 1 相反，生成结果相同
// @SubsetEq(method = "CoreEq", ignore(Revision))
type Document struct {
	Title    string
	Body     string
	Revision int
}
