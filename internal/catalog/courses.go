// Package catalog holds the static content of the bot: courses, FAQ answers
// and contact details.
package catalog

// Tariff is one pricing plan of a course.
type Tariff struct {
	Name          string
	Duration      string
	SupportMentor string
	ExtraLessons  string
	Practice      string
	Employment    string
}

// QA is a frequently asked question.
type QA struct {
	Question string
	Answer   string
}

// Course is a course offered by the training center.
type Course struct {
	// Key is the stable identifier used in button data.
	Key       string
	Name      string
	Duration  string
	PriceInfo string
	Summary   string
	Tariffs   []Tariff
	FAQ       []QA
}

// Tariff looks a plan up by name.
func (c Course) Tariff(name string) (Tariff, bool) {
	for _, t := range c.Tariffs {
		if t.Name == name {
			return t, true
		}
	}
	return Tariff{}, false
}

func plans(duration, standard, premium string) []Tariff {
	mk := func(name, employment string) Tariff {
		return Tariff{
			Name:          name,
			Duration:      duration,
			SupportMentor: "Mavjud",
			ExtraLessons:  "Mavjud",
			Practice:      "Mavjud",
			Employment:    employment,
		}
	}
	return []Tariff{mk("Standart", standard), mk("Intensiv", standard), mk("Premium", premium)}
}

var courses = []Course{
	{
		Key:       "smm",
		Name:      "SMM",
		Duration:  "3 oy",
		PriceInfo: "Narxlar bo'yicha menejer bilan bog'laning",
		Summary: "📲 <b>SMM — Social Media Marketing (3 oy)</b>\n\n" +
			"Instagram, TikTok va Telegram orqali brend va savdoni o'stirish.\n\n" +
			"Kurs davomida siz Instagram, TikTok va Telegram bilan ishlash, reklama sozlash, " +
			"analitika va real loyihalar asosida SMM mutaxassis bo'lib chiqasiz.",
		Tariffs: plans("3 oy", "Ish topishga yordam beriladi", "Ish topish kafolati mavjud"),
		FAQ: []QA{
			{"SMM kursi uchun tajriba kerakmi?", "Yo'q, kurs yangi boshlovchilar uchun mos."},
			{"Qaysi platformalar o'rgatiladi?", "Instagram, TikTok va Telegram bilan ishlanadi."},
			{"Reklama sozlashni ham o'rganamizmi?", "Ha, Instagram va Facebook reklamalari amaliy tarzda o'rgatiladi."},
			{"Kursdan keyin qayerda ishlash mumkin?", "Freelancer, SMM menejer yoki biznes sahifasi yurituvchi sifatida ishlash mumkin."},
			{"Sertifikat beriladimi?", "Ha, kursni muvaffaqiyatli tugatganlarga sertifikat beriladi."},
		},
	},
	{
		Key:       "mobilo",
		Name:      "Mobilografiya",
		Duration:  "3 oy",
		PriceInfo: "Narxlar bo'yicha menejer bilan bog'laning",
		Summary: "📱 <b>Mobilografiya (3 oy)</b>\n\n" +
			"Telefon orqali professional video va kontent yaratish.\n\n" +
			"Suratga olish, kadr tuzish, yorug'lik bilan ishlash, montaj va ijtimoiy tarmoqlar " +
			"uchun kontent tayyorlash amaliy mashg'ulotlar asosida o'rgatiladi.",
		Tariffs: plans("3 oy", "Ish topishga yordam beriladi", "Ish topish kafolati mavjud"),
		FAQ: []QA{
			{"Bu kurs uchun professional kamera kerakmi?", "Yo'q, oddiy smartfon yetarli bo'ladi."},
			{"Qaysi ilovalar bilan ishlanadi?", "CapCut, VN, InShot kabi mashhur mobil montaj ilovalari bilan ishlanadi."},
			{"Darslar nazariymi yoki amaliymi?", "Darslar asosan amaliy, har bir mavzu real video orqali o'rganiladi."},
			{"Kurs tugagach nimalarni qila olaman?", "Ijtimoiy tarmoqlar uchun professional video va kontent tayyorlay olasiz."},
			{"Kurs yakunida sertifikat beriladimi?", "Ha, kursni muvaffaqiyatli tugatganlarga sertifikat beriladi."},
		},
	},
	{
		Key:       "python",
		Name:      "Python Fullstack dasturlash",
		Duration:  "14 oy",
		PriceInfo: "Oyiga 800 000 so'm (aniq narxlar menejer orqali)",
		Summary: "🐍 <b>Python Fullstack Dasturlash (14 oy)</b>\n\n" +
			"0 dan professional web dasturchigacha.\n\n" +
			"Frontend (HTML, CSS, JavaScript, React) va backend (Python, Django, DRF, FastAPI) " +
			"bosqichma-bosqich, real loyihalar asosida o'rgatiladi.",
		Tariffs: plans("14 oy",
			"Upwork, Freelancer, Workana va boshqa platformalardan ish topishga yordam beriladi",
			"Upwork, Freelancer, Workana va boshqa platformalardan ish topishga yordam beriladi"),
		FAQ: []QA{
			{"Bu kurs uchun oldindan dasturlash bilimi kerakmi?", "Yo'q, kurs 0 dan boshlanadi va barcha mavzular oddiy tilda tushuntiriladi."},
			{"14 oy davomida nimalarni o'rganaman?", "Frontend (HTML, CSS, JS, React), Backend (Python, Django, DRF, FastAPI), Git, API va deploy."},
			{"Darslar amaliymi yoki nazariyami?", "Darslar asosan amaliy bo'lib, har bir modulda real loyiha qilinadi."},
			{"Kurs tugagach ish topa olamanmi?", "Kurs davomida portfolio yig'iladi, bu esa ish topishda katta ustunlik beradi."},
		},
	},
	{
		Key:       "cs",
		Name:      "Computer Science",
		Duration:  "3 oy",
		PriceInfo: "Narxlar bo'yicha menejer bilan bog'laning",
		Summary: "💻 <b>Computer Science (3 oy)</b>\n\n" +
			"IT'ga 0 dan kirish va mustahkam poydevor.\n\n" +
			"Kompyuter va internet asoslari, Office dasturlari, dizayn, UI/UX va IT mantiqi " +
			"oddiy va tushunarli tilda, ko'p amaliyot bilan o'rgatiladi.",
		Tariffs: plans("3 oy", "Ishda kerakli ko'nikmalar o'rganiladi", "Ishda kerakli ko'nikmalar o'rganiladi"),
		FAQ: []QA{
			{"Bu kursga qatnashish uchun oldindan bilim kerakmi?", "Yo'q, kurs to'liq 0 dan boshlanadi va yangi boshlovchilar uchun mos."},
			{"Kurs davomiyligi qancha?", "Kurs 3 oy davom etadi va haftasiga reja asosida darslar o'tiladi."},
			{"Kurs tugagach nimalarni bilaman?", "Kompyuter va internet asoslari, Office dasturlari, dizayn va UI/UX tushunchalari hamda real loyiha tajribasi."},
		},
	},
}

// Courses returns the catalog in presentation order.
func Courses() []Course {
	return append([]Course(nil), courses...)
}

// CourseByKey looks a course up by its key.
func CourseByKey(key string) (Course, bool) {
	for _, c := range courses {
		if c.Key == key {
			return c, true
		}
	}
	return Course{}, false
}
