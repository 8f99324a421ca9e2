package disposal

// organicKeywords is the curated organic vocabulary (Portuguese and English).
// Labels are matched by substring, so short entries such as "pea" or "ovo"
// also hit compound labels; that looseness is accepted.
var organicKeywords = [...]string{
	// Fruits (pt)
	"banana", "maçã", "uva", "laranja", "limão", "pera", "abacaxi",
	"manga", "mamão", "melancia", "melão", "kiwi", "morango", "pêssego",
	"coco", "tangerina", "ameixa", "fruta", "frutas", "caju", "acerola",
	"goiaba", "maracujá", "jabuticaba", "pitaya", "romã",

	// Fruits (en)
	"apple", "grape", "orange", "lemon", "lime", "pear", "pineapple",
	"mango", "papaya", "watermelon", "melon", "strawberry", "peach",
	"coconut", "tangerine", "plum", "fruit", "fruits", "berry", "berries",
	"citrus", "citrus fruit",

	// Peels and cores
	"banana peel", "orange peel", "lemon peel", "apple core", "fruit peel",

	// Vegetables (pt)
	"batata", "cenoura", "beterraba", "pepino", "abobrinha", "berinjela",
	"tomate", "alface", "couve", "brocolis", "brócolis", "cebola", "alho",
	"pimentão", "milho", "mandioca", "chuchu", "inhame", "abóbora", "ervilha",

	// Vegetables (en)
	"potato", "carrot", "beet", "cucumber", "zucchini", "eggplant", "tomato",
	"lettuce", "cabbage", "broccoli", "onion", "garlic", "pepper", "corn",
	"cassava", "pumpkin", "pea", "vegetable", "vegetables",

	// Food waste
	"food", "food waste", "leftovers", "scraps", "kitchen waste",
	"organic waste", "compost", "compostable", "meal", "snack", "bread",
	"pão", "arroz", "feijão", "massa", "macarrão", "carne", "peixe",
	"frango", "ovo", "casca de ovo",

	// Plant matter
	"folha", "folhas", "galho", "terra", "solo", "plant", "leaf", "leaves",
	"branch", "soil", "flower", "flor",

	// Generic
	"organic", "orgânico", "alimento", "comida", "food item", "produce",
}
