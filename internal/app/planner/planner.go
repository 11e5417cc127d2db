package planner

// PageCount 计算抓取 total 条记录、每页 pageLimit 条时需要的页数（向上取整）。
//
// total <= 0 或 pageLimit <= 0 时返回 0（不抓取任何页）。
func PageCount(total, pageLimit int) int {
	if total <= 0 || pageLimit <= 0 {
		return 0
	}
	return (total + pageLimit - 1) / pageLimit
}

// Pages 返回 1..count 的页码列表；count <= 0 时返回空列表。
func Pages(count int) []int {
	if count <= 0 {
		return []int{}
	}
	out := make([]int, count)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
