package pose

// Format определяет схему ключевых точек, которую выдает внешний pose estimator.
// Количество и порядок суставов фиксированы для каждого формата.
type Format string

const (
	FormatCOCO17      Format = "COCO_17"
	FormatBody25      Format = "BODY_25"
	FormatBlazePose33 Format = "BLAZEPOSE_33"
)

// JointPair описывает пару симметричных суставов (левый/правый)
type JointPair struct {
	Name  string // короткое имя пары: "ankle", "knee", ...
	Left  string
	Right string
}

// Порядок точек соответствует выходу соответствующего pose estimator:
// COCO_17 - YOLO/MMPose, BODY_25 - OpenPose, BLAZEPOSE_33 - MediaPipe.
var formatJoints = map[Format][]string{
	FormatCOCO17: {
		"nose", "left_eye", "right_eye", "left_ear", "right_ear",
		"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
		"left_wrist", "right_wrist", "left_hip", "right_hip",
		"left_knee", "right_knee", "left_ankle", "right_ankle",
	},
	FormatBody25: {
		"nose", "neck", "right_shoulder", "right_elbow", "right_wrist",
		"left_shoulder", "left_elbow", "left_wrist", "mid_hip",
		"right_hip", "right_knee", "right_ankle",
		"left_hip", "left_knee", "left_ankle",
		"right_eye", "left_eye", "right_ear", "left_ear",
		"left_big_toe", "left_small_toe", "left_heel",
		"right_big_toe", "right_small_toe", "right_heel",
	},
	FormatBlazePose33: {
		"nose", "left_eye_inner", "left_eye", "left_eye_outer",
		"right_eye_inner", "right_eye", "right_eye_outer",
		"left_ear", "right_ear", "mouth_left", "mouth_right",
		"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
		"left_wrist", "right_wrist", "left_pinky", "right_pinky",
		"left_index", "right_index", "left_thumb", "right_thumb",
		"left_hip", "right_hip", "left_knee", "right_knee",
		"left_ankle", "right_ankle", "left_heel", "right_heel",
		"left_foot_index", "right_foot_index",
	},
}

// Канонические пары для анализа симметрии. Пары, отсутствующие в формате,
// отбрасываются на этапе PairedJoints.
var canonicalPairs = []JointPair{
	{Name: "shoulder", Left: "left_shoulder", Right: "right_shoulder"},
	{Name: "elbow", Left: "left_elbow", Right: "right_elbow"},
	{Name: "wrist", Left: "left_wrist", Right: "right_wrist"},
	{Name: "hip", Left: "left_hip", Right: "right_hip"},
	{Name: "knee", Left: "left_knee", Right: "right_knee"},
	{Name: "ankle", Left: "left_ankle", Right: "right_ankle"},
	{Name: "heel", Left: "left_heel", Right: "right_heel"},
	{Name: "toe", Left: "left_big_toe", Right: "right_big_toe"},
	{Name: "foot_index", Left: "left_foot_index", Right: "right_foot_index"},
}

var formatIndex = buildFormatIndex()

func buildFormatIndex() map[Format]map[string]int {
	idx := make(map[Format]map[string]int, len(formatJoints))
	for format, joints := range formatJoints {
		m := make(map[string]int, len(joints))
		for i, name := range joints {
			m[name] = i
		}
		idx[format] = m
	}
	return idx
}

// Valid проверяет, что формат известен
func (f Format) Valid() bool {
	_, ok := formatJoints[f]
	return ok
}

// JointCount возвращает количество ключевых точек формата
func (f Format) JointCount() int {
	return len(formatJoints[f])
}

// JointNames возвращает имена суставов в порядке следования точек
func (f Format) JointNames() []string {
	return formatJoints[f]
}

// JointIndex возвращает позицию сустава в кадре
func (f Format) JointIndex(name string) (int, bool) {
	idx, ok := formatIndex[f][name]
	return idx, ok
}

// HasJoint проверяет наличие сустава в формате
func (f Format) HasJoint(name string) bool {
	_, ok := formatIndex[f][name]
	return ok
}

// PairedJoints возвращает пары симметричных суставов, доступные в формате
func (f Format) PairedJoints() []JointPair {
	pairs := make([]JointPair, 0, len(canonicalPairs))
	for _, pair := range canonicalPairs {
		if f.HasJoint(pair.Left) && f.HasJoint(pair.Right) {
			pairs = append(pairs, pair)
		}
	}
	return pairs
}
