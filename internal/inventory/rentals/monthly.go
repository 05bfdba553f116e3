package rentals

import "sort"

// MonthlyRow は (月, 備品名) ごとの数量合計
type MonthlyRow struct {
	Month    string `db:"month"` // YYYY-MM
	ItemName string `db:"item_name"`
	Quantity int64  `db:"quantity"`
}

type ItemSeries struct {
	ItemName string  `json:"item_name"`
	Data     []int64 `json:"data"` // Labels と同じ並び
}

type MonthlySeries struct {
	Labels []string     `json:"labels"`
	Series []ItemSeries `json:"series"`
	Totals []int64      `json:"totals"`
}

// BuildMonthlySeries はグラフ用に月ラベルを昇順に揃え、備品ごとの系列を0埋めで並べる。
// ラベルは実際にデータのある月のみ
func BuildMonthlySeries(rows []MonthlyRow) MonthlySeries {
	monthIdx := map[string]int{}
	var labels []string
	itemNames := map[string]struct{}{}
	for _, r := range rows {
		if _, ok := monthIdx[r.Month]; !ok {
			monthIdx[r.Month] = 0
			labels = append(labels, r.Month)
		}
		itemNames[r.ItemName] = struct{}{}
	}
	sort.Strings(labels)
	for i, m := range labels {
		monthIdx[m] = i
	}

	names := make([]string, 0, len(itemNames))
	for n := range itemNames {
		names = append(names, n)
	}
	sort.Strings(names)

	seriesIdx := make(map[string]int, len(names))
	out := MonthlySeries{
		Labels: labels,
		Series: make([]ItemSeries, len(names)),
		Totals: make([]int64, len(labels)),
	}
	if out.Labels == nil {
		out.Labels = []string{}
	}
	for i, n := range names {
		seriesIdx[n] = i
		out.Series[i] = ItemSeries{ItemName: n, Data: make([]int64, len(labels))}
	}

	for _, r := range rows {
		mi := monthIdx[r.Month]
		out.Series[seriesIdx[r.ItemName]].Data[mi] += r.Quantity
		out.Totals[mi] += r.Quantity
	}
	return out
}
