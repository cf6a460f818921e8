package dto

// LikeResult 点赞/取消点赞后的状态
type LikeResult struct {
	Likes int64 `json:"likes"`
	Liked bool  `json:"liked"`
}
