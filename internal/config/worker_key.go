package config

type WorkerKeyStruct struct {
	PersistLecturesQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistLecturesQueue: "persist_lectures_queue",
}
