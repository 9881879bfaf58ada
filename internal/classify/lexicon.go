package classify

type weighted struct {
	term   string
	weight float64
}

type bucket struct {
	name  string
	terms []string
}

var financeTerms = []string{
	// ru
	"финанс", "экономик", "бизнес", "рынок", "акци", "облигаци", "инвест", "банк",
	"курс", "доллар", "евро", "рубл", "бирж", "трейд", "капитал", "дивиденд",
	"прибыль", "убыток", "бюджет", "налог", "инфляц", "ввп", "ipo", "spo",
	"санкц", "нефть", "газ", "энергетик", "металл", "золот", "серебр",
	"крипто", "биткоин", "блокчейн", "майнинг", "трейдер",
	// en
	"finance", "economy", "business", "market", "stock", "bond", "investment", "bank",
	"currency", "dollar", "euro", "ruble", "exchange", "trade", "capital", "dividend",
	"profit", "loss", "budget", "tax", "inflation", "gdp", "offering",
	"sanction", "oil", "gas", "energy", "metal", "gold", "silver",
	"crypto", "bitcoin", "blockchain", "mining", "trader", "trading",
}

// marketTokens are tickers and codes that mark finance text on their own.
var marketTokens = []string{
	"moex", "rts", "mosprime", "rubl", "russian market", "usd/rub", "eur/rub", "s&p 500", "nasdaq",
}

// sourceWeights is ordered; the first match wins.
var sourceWeights = []weighted{
	{"reuters", 0.9},
	{"bloomberg", 0.95},
	{"financial times", 0.9},
	{"рбк", 0.85},
	{"коммерсант", 0.8},
	{"ведомости", 0.8},
	{"цб", 1.0},
	{"central bank", 1.0},
	{"centralbank", 1.0},
	{"ecb", 0.9},
	{"imf", 0.9},
	{"world bank", 0.9},
}

// urgencyBoosts is ordered; only the first match applies.
var urgencyBoosts = []weighted{
	{"срочн", 0.2},
	{"экстрен", 0.3},
	{"кризис", 0.25},
	{"важн", 0.15},
	{"urgent", 0.2},
	{"breaking", 0.3},
	{"crisis", 0.25},
	{"important", 0.15},
	{"санкц", 0.2},
	{"sanction", 0.2},
	{"цб", 0.3},
	{"central bank", 0.3},
	{"fed", 0.3},
	{"курс", 0.15},
	{"exchange rate", 0.15},
	{"currency", 0.15},
	{"нефть", 0.2},
	{"oil", 0.2},
	{"газ", 0.2},
	{"gas", 0.2},
	{"биткоин", 0.15},
	{"bitcoin", 0.15},
	{"крипто", 0.15},
	{"crypto", 0.15},
}

var categories = []bucket{
	{"stocks", []string{"акци", "stock", "equity", "shares", "бирж", "s&p", "dow", "nasdaq"}},
	{"bonds", []string{"облигац", "bond", "debt", "coupon", "yield"}},
	{"currency", []string{"курс", "currency", "dollar", "euro", "рубл", "ruble", "exchange rate"}},
	{"commodities", []string{"нефть", "oil", "газ", "gas", "золот", "gold", "металл", "metal"}},
	{"crypto", []string{"крипто", "crypto", "биткоин", "bitcoin", "блокчейн", "blockchain"}},
	{"banking", []string{"банк", "bank", "кредит", "credit", "ставк", "interest rate"}},
	{"regulation", []string{"регулирован", "regulation", "санкц", "sanction", "цб", "central bank"}},
	{"macro", []string{"ввп", "gdp", "инфляц", "inflation", "экономик", "economy"}},
}

var tagEntities = []string{
	"сбербанк", "sberbank", "газпром", "gazprom", "роснефть", "rosneft",
	"лукойл", "lukoil", "втб", "vtb", "яндекс", "yandex", "тинькофф", "tinkoff",
	"apple", "microsoft", "google", "amazon", "tesla", "meta", "facebook",
}

var tagThemes = []string{"рынок", "market", "инвест", "invest", "трейд", "trade", "финанс", "finance"}

var usaSources = []string{
	"reuters", "bloomberg", "cnbc", "financial times", "marketwatch", "yahoo", "bbc", "cnn", "wall street",
}

var russiaSources = []string{
	"рбк", "коммерсант", "ведомости", "тасс", "интерфакс", "прайм", "финам", "банки.ру",
}
