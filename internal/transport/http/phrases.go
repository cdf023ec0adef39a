package http

import "math/rand"

// Feedback phrase pools shown alongside grading results.
var (
	praiseCorrect = []string{
		"😄 كفووو! بطل!",
		"🔥 يا سلام عليك!",
		"🏆 ممتاز!",
		"⭐ أسطووورة!",
		"🎯 فناااان!",
		"😎 معلم! استمر!",
	}
	encourageWrong = []string{
		"🙂 ولا يهمك! حاول مرة ثانية 💪",
		"😅 بسيطة! الجاي أسهل 🔥",
		"📚 مو مشكلة! نتعلم ونكمل ✨",
		"🌟 كمل.. أنت أسطووورة!",
	}
	skipPhrases = []string{
		"⏭️ تمام! نعدّيها ونكمل 😄",
		"⏭️ أوكي! الجاي عليك 🔥",
		"⏭️ ما عليه! نكمل بسرعة 🚀",
	}
)

func pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rand.Intn(len(pool))]
}
