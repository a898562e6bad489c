package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-news/pkg/constant"
)

func rawBody(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestDecodeNewsPatch(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		fields  []NewsField
	}{
		{name: "单个字段", body: `{"title":"B"}`, fields: []NewsField{NewsFieldTitle}},
		{name: "全部字段", body: `{"tags":["x"],"img":"i","text":"t","title":"T"}`, fields: NewsFields()},
		{name: "空对象", body: `{}`, fields: []NewsField{}},
		{name: "未知字段", body: `{"bogus":"x"}`, wantErr: constant.ErrInvalidField},
		{name: "未知字段优先于类型错误", body: `{"title":1,"bogus":"x"}`, wantErr: constant.ErrInvalidField},
		{name: "标题类型错误", body: `{"title":1}`, wantErr: constant.ErrValidation},
		{name: "标签类型错误", body: `{"tags":"x"}`, wantErr: constant.ErrValidation},
		{name: "null 值", body: `{"text":null}`, wantErr: constant.ErrValidation},
		{name: "id 不允许更新", body: `{"id":3}`, wantErr: constant.ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeNewsPatch(rawBody(t, tt.body))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, p.IsEmpty())
				return
			}
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.fields, p.Fields())
		})
	}
}

func TestNewsPatchValidate(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name  string
		patch NewsPatch
		ok    bool
	}{
		{name: "合法标题", patch: NewsPatch{Title: str("Hello")}, ok: true},
		{name: "标题恰好100字符", patch: NewsPatch{Title: str(strings.Repeat("新", TitleMaxLength))}, ok: true},
		{name: "标题超过100字符", patch: NewsPatch{Title: str(strings.Repeat("a", TitleMaxLength+1))}},
		{name: "空标题", patch: NewsPatch{Title: str("")}},
		{name: "空白标题", patch: NewsPatch{Title: str("   ")}},
		{name: "空标签", patch: NewsPatch{Tags: []string{}}},
		{name: "空正文允许", patch: NewsPatch{Text: str("")}, ok: true},
		{name: "图片地址过长", patch: NewsPatch{Img: str(strings.Repeat("i", ImgMaxLength+1))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, constant.ErrValidation)
			}
		})
	}
}

func TestNewsPatchJSONKeepsOnlyPresentKeys(t *testing.T) {
	title := "A"
	p := NewsPatch{Title: &title, Tags: []string{"x", "y"}}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(data, &keys))
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, "title")
	assert.Contains(t, keys, "tags")

	var decoded NewsPatch
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, p, decoded)
}

func TestNewsSnapshotAndApply(t *testing.T) {
	n := &News{ID: 1, Title: "A", Text: "body", Img: "a.png", Tags: []string{"x"}}

	snap := n.Snapshot([]NewsField{NewsFieldTitle, NewsFieldTags})
	assert.ElementsMatch(t, []NewsField{NewsFieldTitle, NewsFieldTags}, snap.Fields())
	assert.Equal(t, "A", *snap.Title)

	title := "B"
	n.Apply(NewsPatch{Title: &title, Tags: []string{"y", "z"}})
	assert.Equal(t, "B", n.Title)
	assert.Equal(t, []string{"y", "z"}, n.Tags)
	assert.Equal(t, "body", n.Text)

	// 快照不受后续修改影响
	assert.Equal(t, "A", *snap.Title)
	assert.Equal(t, []string{"x"}, snap.Tags)

	n.Apply(snap)
	assert.Equal(t, "A", n.Title)
	assert.Equal(t, []string{"x"}, n.Tags)
}

func TestCreateNewsRequestValidate(t *testing.T) {
	str := func(s string) *string { return &s }

	valid := CreateNewsRequest{Title: str("T"), Text: str(""), Img: str(""), Tags: []string{"a"}}
	assert.NoError(t, valid.Validate())

	missingText := valid
	missingText.Text = nil
	assert.ErrorIs(t, missingText.Validate(), constant.ErrValidation)

	noTags := valid
	noTags.Tags = []string{}
	assert.ErrorIs(t, noTags.Validate(), constant.ErrValidation)

	var nilReq *CreateNewsRequest
	assert.ErrorIs(t, nilReq.Validate(), constant.ErrValidation)
}

func TestParseNewsField(t *testing.T) {
	f, err := ParseNewsField("img")
	require.NoError(t, err)
	assert.Equal(t, NewsFieldImg, f)

	_, err = ParseNewsField("Title")
	assert.ErrorIs(t, err, constant.ErrInvalidField)
}
