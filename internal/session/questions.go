package session

// QuestionPair is a suggested question in both supported languages.
type QuestionPair struct {
	Thai    string `json:"thai"`
	English string `json:"english"`
}

var suggestedQuestions = []QuestionPair{
	{
		Thai:    "คุณสมบัติหลักของผู้ยื่นข้อเสนอ/ผู้เข้าร่วมประมูล มีอะไรบ้าง? (สรุป)",
		English: "What are the main qualifications of bidders/participants? (Summarized)",
	},
	{
		Thai:    "ผู้ยื่นข้อเสนอต้องแสดงหลักฐานทางการเงิน / หลักประกันการเสนอราคาเป็นจำนวนเท่าใด?",
		English: "How much financial proof / bid security must be provided?",
	},
	{
		Thai:    "หลักประกันการเสนอราคา / หลักฐานทางการเงินที่ยอมรับมีรูปแบบใดบ้าง?",
		English: "What are acceptable form of financial proof / bid security?",
	},
	{
		Thai:    "ผู้ยื่นข้อเสนอต้องมีผลงานหรือประสบการณ์ย้อนหลังกี่ปี?",
		English: "How many years of company background work or experience are required?",
	},
	{
		Thai:    "การตัดสินผู้ชนะพิจารณาจากราคาต่ำสุดหรือเกณฑ์การให้คะแนน?",
		English: "Is the winner determined by lowest price or scoring criteria?",
	},
}

// SuggestedQuestions returns the starter questions shown to bidders.
func SuggestedQuestions() []QuestionPair {
	out := make([]QuestionPair, len(suggestedQuestions))
	copy(out, suggestedQuestions)
	return out
}
