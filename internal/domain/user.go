package domain

type Role string

const (
	RoleWorker     Role = "worker"
	RoleSupervisor Role = "supervisor"
	RoleManager    Role = "manager"
)

// 每升一级所需的经验值
const XPPerLevel = 500

type User struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Role       Role     `json:"role"`
	EmployeeID string   `json:"employeeId"`
	CompanyID  string   `json:"companyId"`
	Language   string   `json:"language"`
	SkillLevel int      `json:"skillLevel"`
	XP         int      `json:"xp"`
	Level      int      `json:"level"`
	Badges     []string `json:"badges"`
}

// Clone 返回一个不与原对象共享 Badges 的副本
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Badges != nil {
		c.Badges = append([]string(nil), u.Badges...)
	}
	return &c
}

// LevelForXP 计算 floor(xp / 500) + 1，xp 为负数时同样向下取整
func LevelForXP(xp int) int {
	q := xp / XPPerLevel
	if xp%XPPerLevel != 0 && xp < 0 {
		q--
	}
	return q + 1
}

type LevelProgress struct {
	Level          int `json:"level"`
	XP             int `json:"xp"`
	XPIntoLevel    int `json:"xpIntoLevel"`
	XPForNextLevel int `json:"xpForNextLevel"`
}

// ProgressOf 展示用户当前存储的等级，以及 xp 在当前 500 点区间内的位置
func ProgressOf(u *User) LevelProgress {
	into := u.XP - (LevelForXP(u.XP)-1)*XPPerLevel
	return LevelProgress{
		Level:          u.Level,
		XP:             u.XP,
		XPIntoLevel:    into,
		XPForNextLevel: XPPerLevel - into,
	}
}
