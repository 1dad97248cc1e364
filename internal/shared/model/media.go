package model

import "time"

// Media 上传文件元数据
//
// Filename 为系统生成的对象键（抗碰撞），OriginalName 保留上传时的文件名。
// 元数据记录仅在对象写入成功后创建。
type Media struct {
	ID           string    `json:"id" bson:"_id"`
	Filename     string    `json:"filename" bson:"filename"`
	OriginalName string    `json:"original_name" bson:"original_name"`
	Path         string    `json:"path" bson:"path"`
	MimeType     string    `json:"mimetype" bson:"mimetype"`
	Size         int64     `json:"size" bson:"size"`
	URL          string    `json:"url" bson:"url"`
	BlogPostID   string    `json:"blog_post_id,omitempty" bson:"blog_post_id,omitempty"`
	UploadedByID string    `json:"uploaded_by_id" bson:"uploaded_by_id"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}
