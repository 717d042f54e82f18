// Package subseteq 提供基于注解的结构体子集相等比较代码生成器。
//
// # 概述
//
// subseteq 支持一个注解：
//   - @SubsetEq: 为结构体生成一个只比较部分字段的相等方法
//
// 典型场景是结构体中混有业务字段和元数据字段（时间戳、缓存令牌等），
// 判断"业务上是否相等"时需要跳过元数据字段。手写这类方法容易在字段
// 增删时遗漏，生成器保证方法与结构体定义始终同步。
//
// # 基本用法
//
// 在结构体的文档注释中添加注解：
//
//	// @SubsetEq(ignore(UpdatedAt, CacheToken), method = "EqIgnoringMeta")
//	type Item struct {
//	    ID         uint64
//	    Name       string
//	    UpdatedAt  int64
//	    CacheToken string
//	}
//
// 运行 eqgen 后将在 <文件名>_subseteq.go 中生成：
//
//	func (i *Item) EqIgnoringMeta(other *Item) bool {
//	    return i.ID == other.ID && i.Name == other.Name
//	}
//
// 原结构体声明不会被修改。
//
// # 注解参数
//
// @SubsetEq 支持两种参数，顺序任意，逗号分隔：
//
//	ignore(Field1, Field2, ...)  要排除的字段标识符列表，可为空
//	method = "Name"              生成的方法名，默认 EqSubsetIgnoring
//
// 两种等价写法：
//
//	// @SubsetEq(ignore(UpdatedAt), method = "EqCore")
//	// @SubsetEq(method = "EqCore", ignore(UpdatedAt))
//
// 参数顺序不影响生成结果。method 重复出现时以最后一次为准。
//
// # 生成规则
//
//   - 保留字段 = 结构体字段按声明顺序去掉 ignore 集合中的名字
//   - 比较表达式按声明顺序用 && 连接，从左到右短路求值
//   - 每个字段沿用其自身的 == 语义，不做类型检查
//   - 嵌入字段按 Go 的隐式字段名参与比较和排除
//   - 同一字段在 ignore 中出现多次与出现一次等价
//
// # 错误情形
//
// 以下情形会产生携带源码位置的诊断，出现任何诊断时不写出任何文件：
//
//   - 参数格式错误（ignore 中不是标识符、method 不是字符串字面量等）
//   - 注解用在非结构体声明上（接口、别名、函数）
//   - 排除后没有任何可比较字段
//
// # 方法名
//
// method 的值必须是合法的 Go 标识符。首字母大小写决定方法可见性，
// 生成器不强制导出。未提供 method 时使用默认名 EqSubsetIgnoring。
//
// # 示例目录
//
// 完整示例请参考 example/ 目录。
package subseteq
