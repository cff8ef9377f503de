package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/speech-archive-go/internal/constants"
	"github.com/kapu/speech-archive-go/internal/domain"
	"github.com/kapu/speech-archive-go/internal/service/cache"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

type YouTubeService struct {
	service    *youtube.Service
	httpClient *http.Client
	cache      *cache.CacheService
	logger     *zap.Logger
	quotaUsed  int
	quotaMu    sync.Mutex
	quotaReset time.Time
}

const (
	dailyQuotaLimit        = 10000
	searchQuotaCost        = 100 // search.list cost
	channelsQuotaCost      = 1   // channels.list cost
	playlistItemsQuotaCost = 1   // playlistItems.list cost
	videosQuotaCost        = 1   // videos.list cost

	maxPageSize       = 50
	quotaSafetyMargin = 500
	scrapeTimeout     = 15 * time.Second
)

func NewYouTubeService(apiKey string, cacheService *cache.CacheService, logger *zap.Logger) (*YouTubeService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	ctx := context.Background()
	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return newYouTubeService(service, cacheService, logger), nil
}

// NewYouTubeServiceFromClient builds the service on a pre-authorized
// HTTP client, used for the OAuth mode.
func NewYouTubeServiceFromClient(ctx context.Context, client *http.Client, cacheService *cache.CacheService, logger *zap.Logger) (*YouTubeService, error) {
	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return newYouTubeService(service, cacheService, logger), nil
}

func newYouTubeService(service *youtube.Service, cacheService *cache.CacheService, logger *zap.Logger) *YouTubeService {
	ys := &YouTubeService{
		service: service,
		httpClient: &http.Client{
			Timeout: scrapeTimeout,
		},
		cache:      cacheService,
		logger:     logger,
		quotaUsed:  0,
		quotaReset: getNextQuotaReset(),
	}

	logger.Info("YouTube service initialized",
		zap.Time("quotaReset", ys.quotaReset))

	return ys
}

func getNextQuotaReset() time.Time {
	pt, _ := time.LoadLocation("America/Los_Angeles")
	now := time.Now().In(pt)
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, pt)
	return next
}

func (ys *YouTubeService) checkQuota(cost int) error {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()

	now := time.Now()
	if now.After(ys.quotaReset) {
		ys.quotaUsed = 0
		ys.quotaReset = getNextQuotaReset()
		ys.logger.Info("YouTube API quota auto-reset",
			zap.Time("nextReset", ys.quotaReset))
	}

	if ys.quotaUsed+cost > (dailyQuotaLimit - quotaSafetyMargin) {
		return &QuotaExceededError{
			Used:      ys.quotaUsed,
			Limit:     dailyQuotaLimit,
			Requested: cost,
			ResetTime: ys.quotaReset,
		}
	}

	return nil
}

func (ys *YouTubeService) consumeQuota(cost int) {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()

	ys.quotaUsed += cost
	remaining := dailyQuotaLimit - ys.quotaUsed

	ys.logger.Debug("YouTube API quota consumed",
		zap.Int("cost", cost),
		zap.Int("used", ys.quotaUsed),
		zap.Int("remaining", remaining))

	if remaining < quotaSafetyMargin {
		ys.logger.Warn("YouTube API quota running low",
			zap.Int("remaining", remaining),
			zap.Time("resetTime", ys.quotaReset))
	}
}

// ResolveChannelID turns any of the channel URL shapes YouTube serves
// (/channel/UC..., /user/name, /@handle, /c/name) into the canonical
// channel ID. API lookups come first; scraping the channel page is the
// fallback when the API cannot answer.
func (ys *YouTubeService) ResolveChannelID(ctx context.Context, channelURL string) (string, error) {
	kind, value := parseChannelRef(channelURL)
	if kind == refChannelID {
		return value, nil
	}

	cacheKey := fmt.Sprintf("youtube:resolve:%s", channelURL)
	if ys.cache != nil {
		var cached string
		if err := ys.cache.Get(ctx, cacheKey, &cached); err == nil && cached != "" {
			ys.logger.Debug("Channel resolution cache hit",
				zap.String("url", channelURL),
				zap.String("channel_id", cached))
			return cached, nil
		}
	}

	var channelID string
	var err error

	switch kind {
	case refUsername:
		channelID, err = ys.resolveUsername(ctx, value)
	case refHandle, refCustom:
		channelID, err = ys.searchChannelID(ctx, strings.TrimPrefix(value, "@"))
	default:
		err = fmt.Errorf("unrecognized channel reference: %s", channelURL)
	}

	if err != nil || channelID == "" {
		ys.logger.Warn("API resolution failed, scraping channel page",
			zap.String("url", channelURL),
			zap.Error(err))

		channelID, err = ys.scrapeChannelID(ctx, channelURL)
		if err != nil {
			segment := strings.TrimPrefix(value, "@")
			if segment == "" {
				return "", fmt.Errorf("failed to resolve channel %s: %w", channelURL, err)
			}
			// Last resort: the reference's final path segment. An
			// unknown id fails at the listing call and empties the
			// channel.
			ys.logger.Warn("Scrape failed, using the last path segment",
				zap.String("url", channelURL),
				zap.String("channel_id", segment))
			channelID = segment
		}
	}

	if ys.cache != nil {
		_ = ys.cache.Set(ctx, cacheKey, channelID, constants.CacheTTL.ChannelResolution)
	}

	ys.logger.Info("Channel resolved",
		zap.String("url", channelURL),
		zap.String("channel_id", channelID))

	return channelID, nil
}

func (ys *YouTubeService) resolveUsername(ctx context.Context, username string) (string, error) {
	if err := ys.checkQuota(channelsQuotaCost); err != nil {
		return "", err
	}

	call := ys.service.Channels.List([]string{"id"}).
		ForUsername(username)

	response, err := call.Context(ctx).Do()
	if err != nil {
		return "", ys.wrapAPIError(err, channelsQuotaCost)
	}

	ys.consumeQuota(channelsQuotaCost)

	if len(response.Items) == 0 {
		return "", nil
	}

	return response.Items[0].Id, nil
}

func (ys *YouTubeService) searchChannelID(ctx context.Context, query string) (string, error) {
	if err := ys.checkQuota(searchQuotaCost); err != nil {
		return "", err
	}

	call := ys.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(1)

	response, err := call.Context(ctx).Do()
	if err != nil {
		return "", ys.wrapAPIError(err, searchQuotaCost)
	}

	ys.consumeQuota(searchQuotaCost)

	if len(response.Items) == 0 || response.Items[0].Id == nil {
		return "", nil
	}

	return response.Items[0].Id.ChannelId, nil
}

// scrapeChannelID pulls the channel ID out of the channel page markup.
// The canonical link carries it for every channel URL shape.
func (ys *YouTubeService) scrapeChannelID(ctx context.Context, channelURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", normalizeChannelURL(channelURL), nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; SpeechArchiveBot/1.0)")

	resp, err := ys.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("HTML parse failed: %w", err)
	}

	if href, exists := doc.Find(`link[rel="canonical"]`).First().Attr("href"); exists {
		if id := channelIDFromPath(href); id != "" {
			return id, nil
		}
	}

	if content, exists := doc.Find(`meta[itemprop="identifier"]`).First().Attr("content"); exists && content != "" {
		return content, nil
	}

	if content, exists := doc.Find(`meta[itemprop="channelId"]`).First().Attr("content"); exists && content != "" {
		return content, nil
	}

	return "", fmt.Errorf("channel ID not found in page markup")
}

// ListChannelVideos walks the channel's uploads playlist and returns up
// to maxVideos descriptors, newest first.
func (ys *YouTubeService) ListChannelVideos(ctx context.Context, channelID string, maxVideos int) ([]*domain.VideoDescriptor, error) {
	if maxVideos <= 0 {
		maxVideos = maxPageSize
	}

	cacheKey := fmt.Sprintf("youtube:uploads:%s:%d", channelID, maxVideos)
	if ys.cache != nil {
		var cached []*domain.VideoDescriptor
		if err := ys.cache.Get(ctx, cacheKey, &cached); err == nil && cached != nil {
			ys.logger.Debug("Channel listing cache hit",
				zap.String("channel_id", channelID),
				zap.Int("videos", len(cached)))
			return cached, nil
		}
	}

	if err := ys.checkQuota(channelsQuotaCost); err != nil {
		return nil, err
	}

	channelCall := ys.service.Channels.List([]string{"contentDetails", "snippet"}).
		Id(channelID)

	channelResp, err := channelCall.Context(ctx).Do()
	if err != nil {
		return nil, ys.wrapAPIError(err, channelsQuotaCost)
	}

	ys.consumeQuota(channelsQuotaCost)

	if len(channelResp.Items) == 0 {
		return nil, fmt.Errorf("channel not found: %s", channelID)
	}

	channel := channelResp.Items[0]
	if channel.ContentDetails == nil || channel.ContentDetails.RelatedPlaylists == nil {
		return nil, fmt.Errorf("channel %s has no uploads playlist", channelID)
	}

	uploadsPlaylist := channel.ContentDetails.RelatedPlaylists.Uploads
	channelTitle := ""
	if channel.Snippet != nil {
		channelTitle = channel.Snippet.Title
	}
	channelLink := "https://www.youtube.com/channel/" + channelID

	videos := make([]*domain.VideoDescriptor, 0, maxVideos)
	pageToken := ""

	for len(videos) < maxVideos {
		pageSize := int64(maxVideos - len(videos))
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		if err := ys.checkQuota(playlistItemsQuotaCost); err != nil {
			return nil, err
		}

		call := ys.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(uploadsPlaylist).
			MaxResults(pageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		response, err := call.Context(ctx).Do()
		if err != nil {
			return nil, ys.wrapAPIError(err, playlistItemsQuotaCost)
		}

		ys.consumeQuota(playlistItemsQuotaCost)

		for _, item := range response.Items {
			descriptor := playlistItemToDescriptor(item, channelTitle, channelLink)
			if descriptor == nil {
				continue
			}
			videos = append(videos, descriptor)
			if len(videos) >= maxVideos {
				break
			}
		}

		pageToken = response.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if ys.cache != nil {
		_ = ys.cache.Set(ctx, cacheKey, videos, constants.CacheTTL.ChannelListing)
	}

	ys.logger.Info("Channel videos listed",
		zap.String("channel_id", channelID),
		zap.String("channel", channelTitle),
		zap.Int("videos", len(videos)))

	return videos, nil
}

func playlistItemToDescriptor(item *youtube.PlaylistItem, channelTitle, channelLink string) *domain.VideoDescriptor {
	if item == nil || item.Snippet == nil {
		return nil
	}

	videoID := ""
	if item.Snippet.ResourceId != nil {
		videoID = item.Snippet.ResourceId.VideoId
	}
	if videoID == "" && item.ContentDetails != nil {
		videoID = item.ContentDetails.VideoId
	}
	if videoID == "" {
		return nil
	}

	publishedAt := item.Snippet.PublishedAt
	if item.ContentDetails != nil && item.ContentDetails.VideoPublishedAt != "" {
		publishedAt = item.ContentDetails.VideoPublishedAt
	}

	return &domain.VideoDescriptor{
		VideoID:     videoID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		PublishedAt: publishedAt,
		ChannelName: channelTitle,
		ChannelURL:  channelLink,
	}
}

// GetVideoDetails fetches the statistics and duration for one video.
func (ys *YouTubeService) GetVideoDetails(ctx context.Context, videoID string) (*domain.VideoDetails, error) {
	cacheKey := fmt.Sprintf("youtube:details:%s", videoID)
	if ys.cache != nil {
		var cached *domain.VideoDetails
		if err := ys.cache.Get(ctx, cacheKey, &cached); err == nil && cached != nil {
			return cached, nil
		}
	}

	if err := ys.checkQuota(videosQuotaCost); err != nil {
		return nil, err
	}

	call := ys.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID)

	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, ys.wrapAPIError(err, videosQuotaCost)
	}

	ys.consumeQuota(videosQuotaCost)

	if len(response.Items) == 0 {
		return nil, fmt.Errorf("video not found: %s", videoID)
	}

	video := response.Items[0]
	details := &domain.VideoDetails{}

	if video.Statistics != nil {
		details.ViewCount = video.Statistics.ViewCount
		details.LikeCount = video.Statistics.LikeCount
	}
	if video.ContentDetails != nil {
		details.DurationSeconds = parseISODuration(video.ContentDetails.Duration)
	}
	if video.Snippet != nil {
		details.Tags = video.Snippet.Tags
		details.ChannelTitle = video.Snippet.ChannelTitle
	}

	if ys.cache != nil {
		_ = ys.cache.Set(ctx, cacheKey, details, constants.CacheTTL.VideoDetails)
	}

	return details, nil
}

func (ys *YouTubeService) wrapAPIError(err error, cost int) error {
	if apiErr, ok := err.(*googleapi.Error); ok {
		if apiErr.Code == 403 {
			return &QuotaExceededError{
				Used:      ys.quotaUsed,
				Limit:     dailyQuotaLimit,
				Requested: cost,
				ResetTime: ys.quotaReset,
			}
		}
	}
	return fmt.Errorf("YouTube API error: %w", err)
}

func (ys *YouTubeService) GetQuotaStatus() (used int, remaining int, resetTime time.Time) {
	ys.quotaMu.Lock()
	defer ys.quotaMu.Unlock()

	if time.Now().After(ys.quotaReset) {
		return 0, dailyQuotaLimit, getNextQuotaReset()
	}

	return ys.quotaUsed, dailyQuotaLimit - ys.quotaUsed, ys.quotaReset
}

type QuotaExceededError struct {
	Used      int
	Limit     int
	Requested int
	ResetTime time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("YouTube API quota exceeded: used %d/%d (requested %d more), resets at %s",
		e.Used, e.Limit, e.Requested, e.ResetTime.Format(time.RFC3339))
}

type channelRefKind int

const (
	refUnknown channelRefKind = iota
	refChannelID
	refUsername
	refHandle
	refCustom
)

// parseChannelRef classifies a channel URL without touching the network.
func parseChannelRef(channelURL string) (channelRefKind, string) {
	trimmed := strings.TrimSpace(channelURL)

	// A bare canonical ID needs no URL parsing at all.
	if strings.HasPrefix(trimmed, "UC") && !strings.Contains(trimmed, "/") {
		return refChannelID, trimmed
	}

	parsed, err := url.Parse(normalizeChannelURL(trimmed))
	if err != nil {
		return refUnknown, ""
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return refUnknown, ""
	}

	segments := strings.Split(path, "/")
	switch {
	case segments[0] == "channel" && len(segments) > 1:
		return refChannelID, segments[1]
	case segments[0] == "user" && len(segments) > 1:
		return refUsername, segments[1]
	case strings.HasPrefix(segments[0], "@"):
		return refHandle, segments[0]
	case segments[0] == "c" && len(segments) > 1:
		return refCustom, segments[1]
	default:
		return refCustom, segments[0]
	}
}

func normalizeChannelURL(channelURL string) string {
	trimmed := strings.TrimSpace(channelURL)
	if strings.Contains(trimmed, "://") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "@") || !strings.Contains(trimmed, ".") {
		return "https://www.youtube.com/" + strings.TrimPrefix(trimmed, "/")
	}
	return "https://" + trimmed
}

func channelIDFromPath(href string) string {
	idx := strings.Index(href, "/channel/")
	if idx == -1 {
		return ""
	}
	id := href[idx+len("/channel/"):]
	if slash := strings.Index(id, "/"); slash != -1 {
		id = id[:slash]
	}
	return id
}

// parseISODuration converts the API's ISO-8601 duration strings
// (PT1H2M3S, PT45S, P1DT2H) to whole seconds.
func parseISODuration(iso string) int {
	total := 0
	num := 0
	inTime := false

	for _, r := range iso {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
		case r == 'T':
			inTime = true
			num = 0
		case r == 'D':
			total += num * 86400
			num = 0
		case r == 'H':
			if inTime {
				total += num * 3600
			}
			num = 0
		case r == 'M':
			if inTime {
				total += num * 60
			}
			num = 0
		case r == 'S':
			if inTime {
				total += num
			}
			num = 0
		default:
			num = 0
		}
	}

	return total
}
