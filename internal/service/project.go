package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"collaborative-pixelart/internal/domain"
	"collaborative-pixelart/internal/repository"
)

// 画布尺寸上限
const (
	MaxGridSize     = 128
	MaxCellSize     = 64
	inviteCodeChars = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ" // 去掉容易混淆的 I 和 O
	inviteCodeLen   = 8
)

// CreateProjectParams 是创建工程的参数
type CreateProjectParams struct {
	Title    string
	Columns  int
	Rows     int
	CellSize int
	Duration float64
}

// ProjectSettings 是可修改的工程设置，nil 字段保持不变
type ProjectSettings struct {
	Title    *string
	Duration *float64
}

// ProjectService 负责工程的创建、加入和分享。
type ProjectService struct {
	projectRepo  repository.ProjectRepository
	shareBaseURL string
}

// NewProjectService 创建 ProjectService 实例。
func NewProjectService(projectRepo repository.ProjectRepository, shareBaseURL string) *ProjectService {
	if projectRepo == nil {
		panic("ProjectRepository cannot be nil for ProjectService")
	}
	return &ProjectService{
		projectRepo:  projectRepo,
		shareBaseURL: strings.TrimRight(shareBaseURL, "/"),
	}
}

// CreateProject 创建一个只有一帧空白帧的新工程。
func (s *ProjectService) CreateProject(ctx context.Context, ownerID uint, params CreateProjectParams) (*domain.Project, error) {
	logCtx := logrus.WithFields(logrus.Fields{"owner_id": ownerID, "operation": "CreateProject"})

	if err := validateProjectParams(params); err != nil {
		logCtx.WithError(err).Warn("Rejected project parameters")
		return nil, err
	}

	inviteCode, err := s.generateUniqueInviteCode(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate unique invite code")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("invite_code", inviteCode)

	project := &domain.Project{
		OwnerID:    ownerID,
		Title:      strings.TrimSpace(params.Title),
		InviteCode: inviteCode,
		Duration:   params.Duration,
		LastActive: time.Now(),
	}
	if project.Duration == 0 {
		project.Duration = domain.DefaultAnimationDuration
	}
	if err := project.SetCanvas(domain.NewBlankCanvas(params.Columns, params.Rows, params.CellSize)); err != nil {
		logCtx.WithError(err).Error("Failed to encode blank canvas")
		return nil, ErrInternalServer
	}

	if err := s.projectRepo.Save(ctx, project); err != nil {
		logCtx.WithError(err).Error("Failed to save new project")
		return nil, ErrInternalServer
	}

	logCtx.WithField("project_id", project.ID).Info("Project created successfully")
	return project, nil
}

func validateProjectParams(p CreateProjectParams) error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case p.Columns <= 0 || p.Columns > MaxGridSize:
		return fmt.Errorf("%w: columns must be between 1 and %d", ErrInvalidInput, MaxGridSize)
	case p.Rows <= 0 || p.Rows > MaxGridSize:
		return fmt.Errorf("%w: rows must be between 1 and %d", ErrInvalidInput, MaxGridSize)
	case p.CellSize <= 0 || p.CellSize > MaxCellSize:
		return fmt.Errorf("%w: cellSize must be between 1 and %d", ErrInvalidInput, MaxCellSize)
	}
	return validateDuration(p.Duration, true)
}

func validateDuration(d float64, allowZero bool) error {
	if allowZero && d == 0 {
		return nil
	}
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: duration must be a positive number of seconds", ErrInvalidInput)
	}
	return nil
}

// JoinProject 通过邀请码查找工程。
func (s *ProjectService) JoinProject(ctx context.Context, userID uint, inviteCode string) (*domain.Project, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "invite_code": inviteCode})

	project, err := s.projectRepo.FindByInviteCode(ctx, strings.ToUpper(strings.TrimSpace(inviteCode)))
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			logCtx.Warn("Failed to find project by invite code: not found")
			return nil, ErrInvalidInviteCode
		}
		logCtx.WithError(err).Error("Failed to find project by invite code: repository error")
		return nil, ErrInternalServer
	}

	logCtx.WithField("project_id", project.ID).Info("User joined project successfully")
	return project, nil
}

// FindProjectByID 查找工程。
func (s *ProjectService) FindProjectByID(ctx context.Context, projectID uint) (*domain.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		logrus.WithField("project_id", projectID).WithError(err).Error("FindProjectByID: repository error")
		return nil, ErrInternalServer
	}
	return project, nil
}

// UpdateSettings 修改工程标题或动画时长，只有所有者可以修改。
func (s *ProjectService) UpdateSettings(ctx context.Context, userID, projectID uint, settings ProjectSettings) (*domain.Project, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "project_id": projectID})

	project, err := s.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != userID {
		logCtx.Warn("UpdateSettings: user is not the owner")
		return nil, ErrForbidden
	}

	if settings.Title != nil {
		title := strings.TrimSpace(*settings.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		project.Title = title
	}
	if settings.Duration != nil {
		if err := validateDuration(*settings.Duration, false); err != nil {
			return nil, err
		}
		project.Duration = *settings.Duration
	}

	if err := s.projectRepo.Save(ctx, project); err != nil {
		logCtx.WithError(err).Error("UpdateSettings: failed to save project")
		return nil, ErrInternalServer
	}
	logCtx.Info("Project settings updated")
	return project, nil
}

// ShareLink 返回工程的分享链接 "{base}/p/{inviteCode}"。
func (s *ProjectService) ShareLink(project *domain.Project) string {
	return fmt.Sprintf("%s/p/%s", s.shareBaseURL, project.InviteCode)
}

// CanEdit 报告用户能否编辑工程。
// 所有者总是可以编辑；没有成员表，持有邀请码的登录用户都视为协作者。
func (s *ProjectService) CanEdit(userID uint, project *domain.Project) bool {
	if project == nil || userID == 0 {
		return false
	}
	return true
}

// generateUniqueInviteCode 生成在数据库中不存在的邀请码
func (s *ProjectService) generateUniqueInviteCode(ctx context.Context) (string, error) {
	const maxAttempts = 10

	b := make([]byte, inviteCodeLen)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for i := range b {
			b[i] = inviteCodeChars[int(b[i])%len(inviteCodeChars)]
		}
		code := string(b)

		exists, err := s.projectRepo.IsInviteCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("database error checking invite code: %w", err)
		}
		if !exists {
			return code, nil
		}
		logrus.WithField("invite_code", code).Warnf("Generated invite code already exists, retrying (attempt %d)", attempt+1)
	}
	return "", fmt.Errorf("failed to generate a unique invite code after %d attempts", maxAttempts)
}
