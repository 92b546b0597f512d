// Package session 维护当前登录用户、认证状态与经验等级，并通过键值存储在重启后恢复
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/saitap-dev/saitap/backend/internal/domain"
	"github.com/saitap-dev/saitap/backend/internal/kv"
	"github.com/saitap-dev/saitap/backend/internal/notify"
)

// UserKey 是持久化用户信息所用的键
const UserKey = "saitap_user"

type Status string

const (
	StatusLoading       Status = "loading"
	StatusLoggedOut     Status = "logged_out"
	StatusAuthenticated Status = "authenticated"
)

type Reason string

const (
	ReasonLoaded   Reason = "loaded"
	ReasonLogin    Reason = "login"
	ReasonLogout   Reason = "logout"
	ReasonProgress Reason = "progress"
)

type Credentials struct {
	EmployeeID  string `validate:"required"`
	CompanyCode string `validate:"required"`
	Biometric   bool
}

// BiometricCredentials 返回模拟生物识别登录时使用的固定凭据
func BiometricCredentials() Credentials {
	return Credentials{
		EmployeeID:  "biometric_user",
		CompanyCode: "DEMO001",
		Biometric:   true,
	}
}

type State struct {
	Status Status       `json:"status"`
	User   *domain.User `json:"user"`
}

func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

type Change struct {
	Reason   Reason
	XPGained int
	State    State
}

type Store struct {
	kv       kv.Store
	logger   *slog.Logger
	validate *validator.Validate

	// opMu 串行化所有修改操作（包括持久化），mu 只保护内存状态
	opMu   sync.Mutex
	mu     sync.RWMutex
	status Status
	user   *domain.User

	hub notify.Hub[Change]
}

func New(store kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		kv:       store,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		status:   StatusLoading,
	}
}

// Load 从键值存储中恢复登录状态。读取失败或数据损坏时视为未登录。
// 如果在 Load 完成前已经有登录或登出操作，则不会覆盖它们的结果。
func (s *Store) Load(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	user, err := s.readUser(ctx)
	if err != nil {
		s.logger.Error("无法恢复登录状态", "error", err)
	}

	s.mu.Lock()
	if s.status != StatusLoading {
		s.mu.Unlock()
		return
	}
	if user != nil {
		s.user = user
		s.status = StatusAuthenticated
	} else {
		s.status = StatusLoggedOut
	}
	s.mu.Unlock()

	s.notify(Change{Reason: ReasonLoaded, State: s.State()})
}

func (s *Store) readUser(ctx context.Context) (*domain.User, error) {
	data, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var user *domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 根据凭据生成用户并持久化。凭据缺失或写入失败时返回 false 且状态不变。
func (s *Store) Login(ctx context.Context, creds Credentials) bool {
	if err := s.validate.Struct(creds); err != nil {
		s.logger.Info("登录凭据不完整", "error", err)
		return false
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	role := domain.RoleWorker
	if strings.Contains(creds.EmployeeID, "mgr") {
		role = domain.RoleManager
	}

	// 身份信息并不来自凭据，这里固定生成演示用户
	user := &domain.User{
		ID:         "1",
		Name:       "John Smith",
		Role:       role,
		EmployeeID: creds.EmployeeID,
		CompanyID:  creds.CompanyCode,
		Language:   "en",
		SkillLevel: 3,
		XP:         2450,
		Level:      7,
		Badges:     []string{"Safety First", "Quick Learner", "Team Player"},
	}

	if err := s.writeUser(ctx, user); err != nil {
		s.logger.Error("登录失败", "employeeId", creds.EmployeeID, "error", err)
		return false
	}

	s.mu.Lock()
	s.user = user
	s.status = StatusAuthenticated
	s.mu.Unlock()

	s.logger.Info("用户已登录", "employeeId", creds.EmployeeID, "role", role, "biometric", creds.Biometric)
	s.notify(Change{Reason: ReasonLogin, State: s.State()})
	return true
}

// Logout 清除登录状态。删除持久化数据失败只记录日志，内存状态依然会被清除。
func (s *Store) Logout(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.kv.Delete(ctx, UserKey); err != nil {
		s.logger.Error("无法删除持久化的用户信息", "error", err)
	}

	s.mu.Lock()
	changed := s.status != StatusLoggedOut || s.user != nil
	s.user = nil
	s.status = StatusLoggedOut
	s.mu.Unlock()

	if changed {
		s.notify(Change{Reason: ReasonLogout, State: s.State()})
	}
}

// UpdateUserProgress 增加经验值并重新计算等级，未登录时什么也不做。
// 负数不会被截断。返回更新后的用户副本，未登录时返回 nil。
func (s *Store) UpdateUserProgress(ctx context.Context, xpGained int) *domain.User {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil
	}
	updated := s.user.Clone()
	updated.XP += xpGained
	updated.Level = domain.LevelForXP(updated.XP)
	s.user = updated
	s.mu.Unlock()

	if err := s.writeUser(ctx, updated); err != nil {
		s.logger.Error("无法持久化学习进度", "xp", updated.XP, "error", err)
	}

	s.notify(Change{Reason: ReasonProgress, XPGained: xpGained, State: s.State()})
	return updated.Clone()
}

func (s *Store) writeUser(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, UserKey, data)
}

// State 返回当前状态的快照，其中的用户是副本
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{Status: s.status, User: s.user.Clone()}
}

func (s *Store) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.user.Clone()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status == StatusAuthenticated
}

// Subscribe 注册状态变更回调，回调在修改操作中同步执行，不能再调用 Store 的修改方法
func (s *Store) Subscribe(fn func(Change)) func() {
	return s.hub.Subscribe(fn)
}

func (s *Store) notify(c Change) {
	s.hub.Publish(c)
}

// Close 移除所有订阅者
func (s *Store) Close() {
	s.hub.Close()
}
