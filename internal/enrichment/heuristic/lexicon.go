package heuristic

import "regexp"

var positiveWords = []string{
	"рост", "увелич", "прибыль", "успех", "позитив", "выгод", "улучш", "подорож", "укреп",
	"growth", "gain", "profit", "rally", "surge", "record high", "beat",
}

var negativeWords = []string{
	"падение", "сниж", "убыток", "проблем", "риск", "кризис", "сложн", "обвал", "дефолт",
	"fall", "drop", "loss", "crisis", "risk", "default", "plunge", "slump",
}

var organizations = []string{
	"сбербанк", "газпром", "роснефть", "лукойл", "втб", "яндекс",
	"тинькофф", "мосбиржа", "альфа-банк", "цб", "минфин", "правительство",
	"apple", "microsoft", "google", "amazon", "tesla", "meta",
}

var persons = []string{
	"путин", "мишустин", "набиуллина", "силуанов", "греф", "миллер",
	"biden", "trump", "putin", "macron", "scholz",
}

var locations = []string{
	"москва", "россия", "сша", "европа", "китай", "лондон", "нью-йорк",
	"moscow", "russia", "usa", "europe", "china", "london",
}

var moneyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+[,.]?\d*)\s*(млрд|миллиард|billion)`),
	regexp.MustCompile(`(\d+[,.]?\d*)\s*(млн|миллион|million)`),
	regexp.MustCompile(`(\d+[,.]?\d*)\s*%`),
	regexp.MustCompile(`\$(\d+[,.]?\d*)`),
	regexp.MustCompile(`€(\d+[,.]?\d*)`),
}

// Entity caps per group.
const (
	maxOrganizations = 5
	maxPersons       = 3
	maxLocations     = 3
	maxMoney         = 3
)
