package domain

// GreetingKey 根据当前小时返回问候语的翻译键
func GreetingKey(hour int) string {
	switch {
	case hour < 12:
		return "dashboard.goodMorning"
	case hour < 17:
		return "dashboard.goodAfternoon"
	default:
		return "dashboard.goodEvening"
	}
}

// 安全检查完成后奖励的经验值
const SafetyCheckXP = 50
