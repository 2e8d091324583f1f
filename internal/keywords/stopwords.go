package keywords

// englishStopWords is the usual English function-word list.
var englishStopWords = []string{
	"a", "about", "above", "after", "again", "against", "ain", "all", "am", "an", "and", "any",
	"are", "aren", "as", "at", "be", "because", "been", "before", "being", "below", "between",
	"both", "but", "by", "can", "couldn", "did", "didn", "do", "does", "doesn", "doing", "don",
	"down", "during", "each", "few", "for", "from", "further", "had", "hadn", "has", "hasn",
	"have", "haven", "having", "he", "her", "here", "hers", "herself", "him", "himself", "his",
	"how", "i", "if", "in", "into", "is", "isn", "it", "its", "itself", "just", "ll", "me",
	"mightn", "more", "most", "mustn", "my", "myself", "needn", "no", "nor", "not", "now", "of",
	"off", "on", "once", "only", "or", "other", "our", "ours", "ourselves", "out", "over", "own",
	"re", "same", "shan", "she", "should", "shouldn", "so", "some", "such", "than", "that", "the",
	"their", "theirs", "them", "themselves", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "ve", "very", "was", "wasn", "we", "were",
	"weren", "what", "when", "where", "which", "while", "who", "whom", "why", "with", "won",
	"wouldn", "you", "your", "yours", "yourself", "yourselves",
}

// newsStopWords are words that are frequent in news copy and carry no topic.
var newsStopWords = []string{
	"said", "says", "would", "could", "may", "might", "will", "year", "today", "according",
	"also", "new", "one", "two", "like", "get", "got", "make", "made",
}
