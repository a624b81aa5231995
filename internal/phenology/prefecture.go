package phenology

import "strings"

// Prefecture is a JIS X 0401 prefecture.
type Prefecture struct {
	Code   string
	Name   string // e.g. "青森県"
	Romaji string // e.g. "Aomori"
}

// Prefectures lists all 47 prefectures in code order.
var Prefectures = []Prefecture{
	{"01", "北海道", "Hokkaido"},
	{"02", "青森県", "Aomori"},
	{"03", "岩手県", "Iwate"},
	{"04", "宮城県", "Miyagi"},
	{"05", "秋田県", "Akita"},
	{"06", "山形県", "Yamagata"},
	{"07", "福島県", "Fukushima"},
	{"08", "茨城県", "Ibaraki"},
	{"09", "栃木県", "Tochigi"},
	{"10", "群馬県", "Gunma"},
	{"11", "埼玉県", "Saitama"},
	{"12", "千葉県", "Chiba"},
	{"13", "東京都", "Tokyo"},
	{"14", "神奈川県", "Kanagawa"},
	{"15", "新潟県", "Niigata"},
	{"16", "富山県", "Toyama"},
	{"17", "石川県", "Ishikawa"},
	{"18", "福井県", "Fukui"},
	{"19", "山梨県", "Yamanashi"},
	{"20", "長野県", "Nagano"},
	{"21", "岐阜県", "Gifu"},
	{"22", "静岡県", "Shizuoka"},
	{"23", "愛知県", "Aichi"},
	{"24", "三重県", "Mie"},
	{"25", "滋賀県", "Shiga"},
	{"26", "京都府", "Kyoto"},
	{"27", "大阪府", "Osaka"},
	{"28", "兵庫県", "Hyogo"},
	{"29", "奈良県", "Nara"},
	{"30", "和歌山県", "Wakayama"},
	{"31", "鳥取県", "Tottori"},
	{"32", "島根県", "Shimane"},
	{"33", "岡山県", "Okayama"},
	{"34", "広島県", "Hiroshima"},
	{"35", "山口県", "Yamaguchi"},
	{"36", "徳島県", "Tokushima"},
	{"37", "香川県", "Kagawa"},
	{"38", "愛媛県", "Ehime"},
	{"39", "高知県", "Kochi"},
	{"40", "福岡県", "Fukuoka"},
	{"41", "佐賀県", "Saga"},
	{"42", "長崎県", "Nagasaki"},
	{"43", "熊本県", "Kumamoto"},
	{"44", "大分県", "Oita"},
	{"45", "宮崎県", "Miyazaki"},
	{"46", "鹿児島県", "Kagoshima"},
	{"47", "沖縄県", "Okinawa"},
}

var prefectureByKey = func() map[string]string {
	m := make(map[string]string, len(Prefectures)*3)
	for _, p := range Prefectures {
		m[p.Name] = p.Code
		m[trimPrefectureSuffix(p.Name)] = p.Code
		m[strings.ToLower(p.Romaji)] = p.Code
	}
	return m
}()

// trimPrefectureSuffix drops one trailing 都/府/県. 北海道 keeps its 道.
func trimPrefectureSuffix(name string) string {
	for _, suffix := range []string{"都", "府", "県"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// PrefectureCode resolves a prefecture name to its code. Full names ("京都府"),
// short names ("京都"), romaji ("Kyoto", "Kyoto Prefecture", "Tokyo-to") and
// ISO 3166-2 codes ("JP-26") are accepted.
func PrefectureCode(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if code, ok := strings.CutPrefix(strings.ToUpper(name), "JP-"); ok {
		if _, known := PrefectureName(code); known {
			return code, true
		}
		return "", false
	}
	if code, ok := prefectureByKey[name]; ok {
		return code, true
	}
	if code, ok := prefectureByKey[trimPrefectureSuffix(name)]; ok {
		return code, true
	}

	lower := strings.ToLower(name)
	for _, suffix := range []string{" prefecture", "-ken", "-fu", "-to", " ken", " fu"} {
		lower = strings.TrimSuffix(lower, suffix)
	}
	code, ok := prefectureByKey[lower]
	return code, ok
}

// PrefectureName returns the Japanese name for a code.
func PrefectureName(code string) (string, bool) {
	for _, p := range Prefectures {
		if p.Code == code {
			return p.Name, true
		}
	}
	return "", false
}
