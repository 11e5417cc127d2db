package domain

const (
	SourceCatalog = "catalog"
	SourceLookup  = "lookup"
)

// Resolution 记录一条 MovieRecord 到 IMDbID 的解析结果。
//
// 约束：
// - 与输入 records 一一对应（Index 即 records 下标），顺序与 records 一致
// - ID 为空时 ErrorCode 必须非空
type Resolution struct {
	Index int
	Title string
	Year  int

	ID     IMDbID
	Source string // "catalog" / "lookup"

	ErrorCode string
	ErrorMsg  string
}

func (r Resolution) OK() bool { return r.ID != "" && r.ErrorCode == "" }
